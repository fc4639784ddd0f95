package backup

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fairyhunter13/stockkeeper/internal/model"
)

func sampleState() model.State {
	return model.State{
		Products: []model.Product{
			{Code: "A1", Name: "Widget", Price: 10, Stock: 2},
			{Code: "b2", Name: "Gadget", Price: 0.35, Stock: 0},
		},
		Sales: []model.Sale{
			{ID: "s-1", Code: "A1", Name: "Widget", Qty: 3, UnitPrice: 10, Total: 30, DateKey: "2024-03-07", Time: "09:05"},
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	st := sampleState()
	doc, err := Export(st)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := Import(doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, st)
	}
}

func TestExportIsPrettyAndComplete(t *testing.T) {
	doc, err := Export(model.State{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(doc) != "{\n  \"products\": [],\n  \"sales\": []\n}" {
		t.Fatalf("unexpected empty export: %s", doc)
	}
	doc, _ = Export(sampleState())
	for _, field := range []string{`"unitPrice"`, `"dateKey"`, `"time"`, `"total"`, `"stock"`} {
		if !strings.Contains(string(doc), field) {
			t.Fatalf("export missing %s", field)
		}
	}
}

func TestImportRejectsBadShape(t *testing.T) {
	for _, doc := range []string{
		``,
		`{`,
		`null`,
		`[]`,
		`{"products":[]}`,
		`{"sales":[]}`,
		`{"products":{},"sales":[]}`,
		`{"products":[],"sales":null}`,
		`{"products":[{"code":"A","stock":"many"}],"sales":[]}`,
		`{"products":[{"code":"A","stock":5.5}],"sales":[]}`,
		`{"products":[],"sales":[{"id":"s1","code":"A","qty":0.5}]}`,
	} {
		if _, err := Import([]byte(doc)); !errors.Is(err, model.ErrFormat) {
			t.Fatalf("doc %q: expected ErrFormat, got %v", doc, err)
		}
	}
}

func TestImportEmptyArrays(t *testing.T) {
	st, err := Import([]byte(`{"products":[],"sales":[]}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if st.Products == nil || st.Sales == nil || len(st.Products)+len(st.Sales) != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestImportAcceptsIntegralFloats(t *testing.T) {
	st, err := Import([]byte(`{"products":[{"code":"A","name":"W","price":1,"stock":5.0}],"sales":[{"id":"s1","code":"A","qty":2.0,"unitPrice":1,"total":2}]}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if st.Products[0].Stock != 5 || st.Sales[0].Qty != 2 {
		t.Fatalf("unexpected counts: stock=%d qty=%d", st.Products[0].Stock, st.Sales[0].Qty)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-03-07"); got != "backup_stock_2024-03-07.json" {
		t.Fatalf("FileName = %q", got)
	}
}

type fakeReplacer struct {
	got   *model.State
	calls int
}

func (f *fakeReplacer) Replace(st model.State) {
	f.calls++
	f.got = &st
}

func TestRestoreConfirmGate(t *testing.T) {
	doc, _ := Export(sampleState())

	r := &fakeReplacer{}
	if _, err := Restore(r, doc, func(string) bool { return false }); !errors.Is(err, model.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if r.calls != 0 {
		t.Fatalf("declined restore must not replace")
	}

	asked := false
	_, err := Restore(r, []byte(`{"products":[]}`), func(string) bool { asked = true; return true })
	if !errors.Is(err, model.ErrFormat) || asked {
		t.Fatalf("invalid doc must fail before confirmation: err=%v asked=%v", err, asked)
	}

	if _, err := Restore(r, doc, model.AlwaysConfirm); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if r.calls != 1 || len(r.got.Products) != 2 {
		t.Fatalf("unexpected replace: %+v", r.got)
	}
}
