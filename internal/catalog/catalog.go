// Package catalog manages product records inside the state store.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/store"
)

// Manager upserts and deletes products.
type Manager struct {
	store *store.Store
}

// NewManager constructs a Manager over st.
func NewManager(st *store.Store) *Manager {
	return &Manager{store: st}
}

// Upsert validates the fields and either replaces the product with the same
// code (ignoring case, keeping its position) or appends a new one. The
// stored code takes the spelling of this call. created reports an append.
func (m *Manager) Upsert(code, name string, price float64, stock int64) (p model.Product, created bool, err error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	switch {
	case code == "":
		return model.Product{}, false, model.Invalid("code", "is required")
	case name == "":
		return model.Product{}, false, model.Invalid("name", "is required")
	case math.IsNaN(price) || math.IsInf(price, 0):
		return model.Product{}, false, model.Invalid("price", "must be a finite number")
	case price < 0:
		return model.Product{}, false, model.Invalid("price", "must be >= 0")
	case stock < 0:
		return model.Product{}, false, model.Invalid("stock", "must be >= 0")
	}
	p = model.Product{Code: code, Name: name, Price: price, Stock: stock}
	err = m.store.Update(func(tx *store.Tx) error {
		if existing, ok := tx.Lookup(code); ok {
			*existing = p
			return nil
		}
		tx.AppendProduct(p)
		created = true
		return nil
	})
	return p, created, err
}

// Delete removes the product whose code matches exactly. Sales history is
// left as is. A missing code is not an error; removed reports whether
// anything was dropped.
func (m *Manager) Delete(code string) (removed bool) {
	_ = m.store.Update(func(tx *store.Tx) error {
		removed = tx.RemoveProducts(code) > 0
		return nil
	})
	return removed
}

// DeleteWithConfirm asks confirm before deleting and returns
// model.ErrDeclined when the operator backs out.
func (m *Manager) DeleteWithConfirm(code string, confirm model.Confirm) (bool, error) {
	if !confirm(fmt.Sprintf("Delete the product with code %q?", code)) {
		return false, model.ErrDeclined
	}
	return m.Delete(code), nil
}

// Get finds a product by code ignoring case.
func (m *Manager) Get(code string) (model.Product, error) {
	var (
		p  model.Product
		ok bool
	)
	m.store.View(func(tx *store.Tx) {
		var found *model.Product
		if found, ok = tx.Lookup(strings.TrimSpace(code)); ok {
			p = *found
		}
	})
	if !ok {
		return model.Product{}, fmt.Errorf("%w: product %q", model.ErrNotFound, code)
	}
	return p, nil
}

// List returns the products in catalog order.
func (m *Manager) List() []model.Product {
	return m.store.Snapshot().Products
}
