package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ParseWhole reads a JSON number that must hold an integral value. Integral
// floats such as 5.0 are accepted. An empty number reads as zero.
func ParseWhole(n json.Number) (int64, error) {
	s := n.String()
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is not a whole number", s)
	}
	return int64(f), nil
}

func decodeWhole(raw json.RawMessage, field string) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	v, err := ParseWhole(n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// UnmarshalJSON accepts stock written as an integral float.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var aux struct {
		plain
		Stock json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	stock, err := decodeWhole(aux.Stock, "stock")
	if err != nil {
		return err
	}
	*p = Product(aux.plain)
	p.Stock = stock
	return nil
}

// UnmarshalJSON accepts qty written as an integral float.
func (s *Sale) UnmarshalJSON(b []byte) error {
	type plain Sale
	var aux struct {
		plain
		Qty json.RawMessage `json:"qty"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	qty, err := decodeWhole(aux.Qty, "qty")
	if err != nil {
		return err
	}
	*s = Sale(aux.plain)
	s.Qty = qty
	return nil
}
