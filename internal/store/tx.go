package store

import (
	"strings"

	"github.com/fairyhunter13/stockkeeper/internal/model"
)

// NormalizeCode is the index key for a product code.
func NormalizeCode(code string) string { return strings.ToLower(code) }

// Tx gives mutation helpers over one state, keeping a case-insensitive code
// index in step with the product sequence. When several products share a
// lowercase code, the index points at the first one.
type Tx struct {
	st    *model.State
	index map[string]int
}

func newTx(st *model.State) *Tx {
	tx := &Tx{st: st}
	tx.reindex()
	return tx
}

func (tx *Tx) reindex() {
	tx.index = make(map[string]int, len(tx.st.Products))
	for i, p := range tx.st.Products {
		k := NormalizeCode(p.Code)
		if _, ok := tx.index[k]; !ok {
			tx.index[k] = i
		}
	}
}

// Products exposes the product sequence for reading.
func (tx *Tx) Products() []model.Product { return tx.st.Products }

// Sales exposes the sale sequence for reading.
func (tx *Tx) Sales() []model.Sale { return tx.st.Sales }

// Lookup finds a product by code ignoring case.
func (tx *Tx) Lookup(code string) (*model.Product, bool) {
	i, ok := tx.index[NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	return &tx.st.Products[i], true
}

// LookupExact finds a product whose code matches exactly.
func (tx *Tx) LookupExact(code string) (*model.Product, bool) {
	if p, ok := tx.Lookup(code); ok && p.Code == code {
		return p, true
	}
	for i := range tx.st.Products {
		if tx.st.Products[i].Code == code {
			return &tx.st.Products[i], true
		}
	}
	return nil, false
}

// AppendProduct adds p at the end of the sequence.
func (tx *Tx) AppendProduct(p model.Product) {
	tx.st.Products = append(tx.st.Products, p)
	k := NormalizeCode(p.Code)
	if _, ok := tx.index[k]; !ok {
		tx.index[k] = len(tx.st.Products) - 1
	}
}

// RemoveProducts drops every product whose code matches exactly and returns
// how many were removed.
func (tx *Tx) RemoveProducts(code string) int {
	kept := tx.st.Products[:0]
	for _, p := range tx.st.Products {
		if p.Code != code {
			kept = append(kept, p)
		}
	}
	n := len(tx.st.Products) - len(kept)
	tx.st.Products = kept
	if n > 0 {
		tx.reindex()
	}
	return n
}

// FindSale returns the position of the sale with id, or -1.
func (tx *Tx) FindSale(id string) int {
	for i := range tx.st.Sales {
		if tx.st.Sales[i].ID == id {
			return i
		}
	}
	return -1
}

// AppendSale adds s at the end of the ledger.
func (tx *Tx) AppendSale(s model.Sale) {
	tx.st.Sales = append(tx.st.Sales, s)
}

// RemoveSales drops every sale with id and returns how many were removed.
func (tx *Tx) RemoveSales(id string) int {
	kept := tx.st.Sales[:0]
	for _, s := range tx.st.Sales {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	n := len(tx.st.Sales) - len(kept)
	tx.st.Sales = kept
	return n
}
