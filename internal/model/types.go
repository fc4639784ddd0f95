// Package model defines domain types used by the service.
package model

import (
	"fmt"
	"time"
)

const (
	// DateKeyLayout formats the calendar day a sale belongs to.
	DateKeyLayout = "2006-01-02"
	// TimeLayout formats the minute a sale was recorded at.
	TimeLayout = "15:04"
)

// Product is a catalog entry. Code is unique ignoring case.
type Product struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int64   `json:"stock"`
}

// Sale is a ledger entry. Name and UnitPrice are snapshots taken when the
// sale was recorded and do not follow later product edits.
type Sale struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Qty       int64   `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
	DateKey   string  `json:"dateKey"`
	Time      string  `json:"time"`
}

// State is the whole persisted aggregate.
type State struct {
	Products []Product `json:"products"`
	Sales    []Sale    `json:"sales"`
}

// EmptyState returns a state with both sequences allocated, so it encodes as
// empty arrays rather than null.
func EmptyState() State {
	return State{Products: []Product{}, Sales: []Sale{}}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := State{
		Products: make([]Product, len(s.Products)),
		Sales:    make([]Sale, len(s.Sales)),
	}
	copy(c.Products, s.Products)
	copy(c.Sales, s.Sales)
	return c
}

// DaySummary groups the sales of one calendar day.
type DaySummary struct {
	DateKey string  `json:"date_key"`
	Sales   []Sale  `json:"sales"`
	Total   float64 `json:"total"`
}

// DateKey returns the YYYY-MM-DD key for t.
func DateKey(t time.Time) string { return t.Format(DateKeyLayout) }

// ClockTime returns the HH:MM representation of t.
func ClockTime(t time.Time) string { return t.Format(TimeLayout) }

// FormatMoney renders v with two decimals.
func FormatMoney(v float64) string { return fmt.Sprintf("%.2f", v) }

// Stock levels reported alongside products.
const (
	StockOut = "out"
	StockLow = "low"
	StockOK  = "ok"
)

// StockLevel classifies a stock count against the low-stock threshold.
func StockLevel(stock int64, lowThreshold int64) string {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= lowThreshold:
		return StockLow
	default:
		return StockOK
	}
}
