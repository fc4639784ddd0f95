package sales

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/fairyhunter13/stockkeeper/internal/catalog"
	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/persist"
	"github.com/fairyhunter13/stockkeeper/internal/store"
)

var fixedNow = time.Date(2024, 3, 7, 14, 30, 45, 0, time.UTC)

func setup(t *testing.T) (*Engine, *catalog.Manager, *store.Store) {
	t.Helper()
	st := store.New(persist.NewMemory())
	n := 0
	e := NewEngine(st, time.UTC,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("sale-%d", n) }),
	)
	c := catalog.NewManager(st)
	if _, _, err := c.Upsert("A1", "Widget", 10, 5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return e, c, st
}

func TestRecordSale(t *testing.T) {
	e, c, st := setup(t)
	sale, err := e.Record("a1", 3)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	want := model.Sale{
		ID: "sale-1", Code: "A1", Name: "Widget", Qty: 3,
		UnitPrice: 10, Total: 30, DateKey: "2024-03-07", Time: "14:30",
	}
	if sale != want {
		t.Fatalf("unexpected sale:\n got %+v\nwant %+v", sale, want)
	}
	p, _ := c.Get("A1")
	if p.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", p.Stock)
	}

	_, err = e.Record("a1", 10)
	var ise *model.InsufficientStockError
	if !errors.As(err, &ise) || ise.Available != 2 || ise.Requested != 10 {
		t.Fatalf("expected insufficient stock with available=2, got %v", err)
	}
	p, _ = c.Get("A1")
	if p.Stock != 2 || len(st.Snapshot().Sales) != 1 {
		t.Fatalf("failed sale changed state")
	}
}

func TestRecordSellsExactStock(t *testing.T) {
	e, c, _ := setup(t)
	if _, err := e.Record("A1", 5); err != nil {
		t.Fatalf("record: %v", err)
	}
	p, _ := c.Get("A1")
	if p.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", p.Stock)
	}
	if _, err := e.Record("A1", 1); !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestRecordValidationAndNotFound(t *testing.T) {
	e, _, _ := setup(t)
	if _, err := e.Record(" ", 1); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error for empty code, got %v", err)
	}
	for _, qty := range []int64{0, -2} {
		if _, err := e.Record("A1", qty); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
	if _, err := e.Record("ZZ", 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSnapshotFieldsIgnoreLaterEdits(t *testing.T) {
	e, c, _ := setup(t)
	sale, _ := e.Record("A1", 1)
	if _, _, err := c.Upsert("A1", "Renamed", 99, 4); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got := e.Today().Sales[0]
	if got != sale {
		t.Fatalf("sale followed product edit: %+v", got)
	}
}

func TestRecordThenReverseRoundTrip(t *testing.T) {
	e, c, st := setup(t)
	_, _ = e.Record("A1", 1)
	before := st.Snapshot()
	sale, err := e.Record("a1", 2)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := e.Reverse(sale.ID); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if !reflect.DeepEqual(st.Snapshot(), before) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", st.Snapshot(), before)
	}
	p, _ := c.Get("A1")
	if p.Stock != 4 {
		t.Fatalf("expected stock 4, got %d", p.Stock)
	}
}

func TestReverseSkipsRestockForDeletedProduct(t *testing.T) {
	e, c, st := setup(t)
	sale, _ := e.Record("A1", 2)
	c.Delete("A1")
	if _, err := e.Reverse(sale.ID); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	snap := st.Snapshot()
	if len(snap.Sales) != 0 || len(snap.Products) != 0 {
		t.Fatalf("expected sale removed and no phantom product: %+v", snap)
	}
}

func TestReverseUsesExactCode(t *testing.T) {
	e, c, st := setup(t)
	sale, _ := e.Record("A1", 2)
	// recreate the product under a different case variant
	c.Delete("A1")
	_, _, _ = c.Upsert("a1", "Widget", 10, 1)
	if _, err := e.Reverse(sale.ID); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got := st.Snapshot().Products[0].Stock; got != 1 {
		t.Fatalf("restock must only hit an exact code match, got stock %d", got)
	}
}

func TestReverseNotFound(t *testing.T) {
	e, _, _ := setup(t)
	if _, err := e.Reverse("nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := e.ReverseWithConfirm("nope", model.AlwaysConfirm); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReverseWithConfirm(t *testing.T) {
	e, _, st := setup(t)
	sale, _ := e.Record("A1", 2)
	var prompt string
	if _, err := e.ReverseWithConfirm(sale.ID, func(p string) bool { prompt = p; return false }); !errors.Is(err, model.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if prompt == "" || len(st.Snapshot().Sales) != 1 {
		t.Fatalf("declined reversal changed state")
	}
	if _, err := e.ReverseWithConfirm(sale.ID, model.AlwaysConfirm); err != nil {
		t.Fatalf("reverse: %v", err)
	}
}

func TestForDay(t *testing.T) {
	e, _, st := setup(t)
	st.Replace(model.State{
		Products: []model.Product{{Code: "A1", Name: "Widget", Price: 10, Stock: 5}},
		Sales: []model.Sale{
			{ID: "1", DateKey: "2024-03-06", Total: 100},
			{ID: "2", DateKey: "2024-03-07", Total: 10},
			{ID: "3", DateKey: "2024-03-07", Total: 2.5},
		},
	})
	sum := e.ForDay("2024-03-07")
	if len(sum.Sales) != 2 || sum.Sales[0].ID != "2" || sum.Sales[1].ID != "3" {
		t.Fatalf("unexpected day sales %+v", sum.Sales)
	}
	if sum.Total != 12.5 {
		t.Fatalf("expected total 12.5, got %v", sum.Total)
	}
	if today := e.Today(); today.DateKey != "2024-03-07" || len(today.Sales) != 2 {
		t.Fatalf("unexpected today summary %+v", today)
	}
	empty := e.ForDay("1999-01-01")
	if empty.Sales == nil || empty.Total != 0 {
		t.Fatalf("expected empty allocated summary, got %+v", empty)
	}
}

func TestSaleDateUsesLocation(t *testing.T) {
	st := store.New(persist.NewMemory())
	loc := time.FixedZone("UTC-3", -3*3600)
	e := NewEngine(st, loc, WithClock(func() time.Time {
		return time.Date(2024, 3, 8, 1, 15, 0, 0, time.UTC)
	}))
	_, _, _ = catalog.NewManager(st).Upsert("A1", "Widget", 1, 1)
	sale, err := e.Record("A1", 1)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.DateKey != "2024-03-07" || sale.Time != "22:15" {
		t.Fatalf("expected local day and time, got %s %s", sale.DateKey, sale.Time)
	}
	if sale.ID == "" {
		t.Fatalf("expected generated id")
	}
}
