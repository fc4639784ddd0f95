// Package sales records sales against the catalog stock and reverses them.
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
	"github.com/fairyhunter13/stockkeeper/internal/store"
)

// Engine applies sales to the state store.
type Engine struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how sale ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine constructs an Engine. Sales are stamped with the calendar day
// and clock time in loc.
func NewEngine(st *store.Store, loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{store: st, loc: loc, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TodayKey is the dateKey of the current calendar day.
func (e *Engine) TodayKey() string {
	return model.DateKey(e.now().In(e.loc))
}

// Record sells qty units of the product matching code (ignoring case).
func (e *Engine) Record(code string, qty int64) (model.Sale, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Sale{}, model.Invalid("code", "is required")
	}
	if qty <= 0 {
		return model.Sale{}, model.Invalid("qty", "must be a positive integer")
	}
	var sale model.Sale
	err := e.store.Update(func(tx *store.Tx) error {
		p, ok := tx.Lookup(code)
		if !ok {
			return fmt.Errorf("%w: product %q", model.ErrNotFound, code)
		}
		if p.Stock < qty {
			return &model.InsufficientStockError{Code: p.Code, Available: p.Stock, Requested: qty}
		}
		p.Stock -= qty
		at := e.now().In(e.loc)
		sale = model.Sale{
			ID:        e.newID(),
			Code:      p.Code,
			Name:      p.Name,
			Qty:       qty,
			UnitPrice: p.Price,
			Total:     p.Price * float64(qty),
			DateKey:   model.DateKey(at),
			Time:      model.ClockTime(at),
		}
		tx.AppendSale(sale)
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}
	obs.Logger.Info("sale_recorded",
		"sale_id", sale.ID,
		"code", sale.Code,
		"qty", sale.Qty,
		"total", model.FormatMoney(sale.Total),
	)
	return sale, nil
}

// Reverse removes the sale with id and returns its units to the product with
// the exact same code. If that product was deleted meanwhile the restock is
// skipped; the sale is removed either way.
func (e *Engine) Reverse(id string) (model.Sale, error) {
	var (
		sale      model.Sale
		restocked bool
	)
	err := e.store.Update(func(tx *store.Tx) error {
		i := tx.FindSale(id)
		if i < 0 {
			return fmt.Errorf("%w: sale %q", model.ErrNotFound, id)
		}
		sale = tx.Sales()[i]
		if p, ok := tx.LookupExact(sale.Code); ok {
			p.Stock += sale.Qty
			restocked = true
		}
		tx.RemoveSales(id)
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}
	obs.Logger.Info("sale_reversed", "sale_id", sale.ID, "code", sale.Code, "qty", sale.Qty, "restocked", restocked)
	return sale, nil
}

// ReverseWithConfirm looks the sale up, asks confirm, then reverses it.
func (e *Engine) ReverseWithConfirm(id string, confirm model.Confirm) (model.Sale, error) {
	var (
		sale  model.Sale
		found bool
	)
	e.store.View(func(tx *store.Tx) {
		if i := tx.FindSale(id); i >= 0 {
			sale, found = tx.Sales()[i], true
		}
	})
	if !found {
		return model.Sale{}, fmt.Errorf("%w: sale %q", model.ErrNotFound, id)
	}
	prompt := fmt.Sprintf("Remove the sale of %d x %q? The stock will be returned.", sale.Qty, sale.Name)
	if !confirm(prompt) {
		return model.Sale{}, model.ErrDeclined
	}
	return e.Reverse(id)
}

// ForDay lists the sales of dateKey in recording order with their total.
func (e *Engine) ForDay(dateKey string) model.DaySummary {
	sum := model.DaySummary{DateKey: dateKey, Sales: []model.Sale{}}
	e.store.View(func(tx *store.Tx) {
		for _, s := range tx.Sales() {
			if s.DateKey == dateKey {
				sum.Sales = append(sum.Sales, s)
				sum.Total += s.Total
			}
		}
	})
	return sum
}

// Today is ForDay for the current calendar day.
func (e *Engine) Today() model.DaySummary {
	return e.ForDay(e.TodayKey())
}
