// Package backup serializes the full state to a portable JSON document and
// parses such documents back, rejecting anything that lacks either the
// products or the sales array.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/stockkeeper/internal/model"
)

// FileName is the suggested name of a backup taken on dateKey.
func FileName(dateKey string) string {
	return "backup_stock_" + dateKey + ".json"
}

// Encode renders st compactly, the form kept in the durable slot.
func Encode(st model.State) ([]byte, error) {
	return json.Marshal(normalize(st))
}

// Export renders st as a pretty-printed backup document.
func Export(st model.State) ([]byte, error) {
	return json.MarshalIndent(normalize(st), "", "  ")
}

// Import parses a backup document. It does not touch the live state.
func Import(doc []byte) (model.State, error) {
	return Decode(doc)
}

// Decode parses doc and checks that both sequences are present as arrays.
// Every failure wraps model.ErrFormat.
func Decode(doc []byte) (model.State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", model.ErrFormat, err)
	}
	st := model.EmptyState()
	if err := decodeArray(raw, "products", &st.Products); err != nil {
		return model.State{}, err
	}
	if err := decodeArray(raw, "sales", &st.Sales); err != nil {
		return model.State{}, err
	}
	return st, nil
}

func decodeArray(raw map[string]json.RawMessage, field string, dst any) error {
	v, ok := raw[field]
	if !ok {
		return fmt.Errorf("%w: missing %q array", model.ErrFormat, field)
	}
	if t := bytes.TrimSpace(v); len(t) == 0 || t[0] != '[' {
		return fmt.Errorf("%w: %q is not an array", model.ErrFormat, field)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("%w: %q: %v", model.ErrFormat, field, err)
	}
	return nil
}

func normalize(st model.State) model.State {
	if st.Products == nil {
		st.Products = []model.Product{}
	}
	if st.Sales == nil {
		st.Sales = []model.Sale{}
	}
	return st
}

// Replacer receives a validated state as a wholesale substitution.
type Replacer interface {
	Replace(st model.State)
}

// Restore parses doc and, once confirm approves, hands the result to dst.
// A document that fails to parse never reaches confirm.
func Restore(dst Replacer, doc []byte, confirm model.Confirm) (model.State, error) {
	st, err := Import(doc)
	if err != nil {
		return model.State{}, err
	}
	prompt := fmt.Sprintf("Replace the current inventory and sales with %d products and %d sales from the backup?",
		len(st.Products), len(st.Sales))
	if !confirm(prompt) {
		return model.State{}, model.ErrDeclined
	}
	dst.Replace(st)
	return st, nil
}
