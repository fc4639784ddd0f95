package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/stockkeeper/internal/backup"
	"github.com/fairyhunter13/stockkeeper/internal/catalog"
	"github.com/fairyhunter13/stockkeeper/internal/config"
	httpopenapi "github.com/fairyhunter13/stockkeeper/internal/http/openapi"
	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
	"github.com/fairyhunter13/stockkeeper/internal/sales"
	"github.com/fairyhunter13/stockkeeper/internal/store"
)

const maxBackupBytes = 32 << 20

type App struct {
	Cfg     config.Config
	Store   *store.Store
	Catalog *catalog.Manager
	Sales   *sales.Engine
	closing atomic.Bool
	started time.Time
}

// productView is spelled out field by field; embedding model.Product would
// promote its UnmarshalJSON and hide stock_level.
type productView struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int64   `json:"stock"`
	StockLevel string  `json:"stock_level"`
}

// productRequest accepts a productView body as-is; stock_level is derived
// and ignored on input.
type productRequest struct {
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Price      *float64     `json:"price"`
	Stock      *json.Number `json:"stock"`
	StockLevel string       `json:"stock_level"`
}

type saleRequest struct {
	Code string      `json:"code"`
	Qty  json.Number `json:"qty"`
}

type daySummaryView struct {
	model.DaySummary
	TotalFormatted string `json:"total_formatted"`
}

func NewApp(cfg config.Config, st *store.Store, cat *catalog.Manager, eng *sales.Engine) *App {
	return &App{Cfg: cfg, Store: st, Catalog: cat, Sales: eng, started: time.Now()}
}

// StartShutdown makes every further mutation fail with 503.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) view(p model.Product) productView {
	return productView{
		Code:       p.Code,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		StockLevel: model.StockLevel(p.Stock, a.Cfg.LowStockThreshold),
	}
}

func (a *App) rejectIfClosing(w http.ResponseWriter) bool {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return true
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products := a.Catalog.List()
		out := make([]productView, 0, len(products))
		for _, p := range products {
			out = append(out, a.view(p))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		a.upsertProduct(w, r)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) upsertProduct(w http.ResponseWriter, r *http.Request) {
	if a.rejectIfClosing(w) {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeDomainError(w, model.Invalid("price", "is required"))
		return
	}
	if req.Stock == nil {
		writeDomainError(w, model.Invalid("stock", "is required"))
		return
	}
	stock, err := model.ParseWhole(*req.Stock)
	if err != nil {
		writeDomainError(w, model.Invalid("stock", "must be a whole number"))
		return
	}
	p, created, err := a.Catalog.Upsert(req.Code, req.Name, *req.Price, stock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, a.view(p))
	obs.Logger.Info("product_upserted",
		"request_id", RequestIDFromContext(r.Context()),
		"code", p.Code,
		"created", created,
		"stock", p.Stock,
	)
}

func (a *App) productHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/products/")
	if code == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.Catalog.Get(code)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.view(p))
	case http.MethodDelete:
		if a.rejectIfClosing(w) {
			return
		}
		removed, err := a.Catalog.DeleteWithConfirm(code, confirmFromRequest(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": code, "removed": removed})
		obs.Logger.Info("product_deleted", "request_id", RequestIDFromContext(r.Context()), "code", code, "removed", removed)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) salesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		day := r.URL.Query().Get("date")
		if day == "" {
			day = a.Sales.TodayKey()
		} else if _, err := time.Parse(model.DateKeyLayout, day); err != nil {
			writeDomainError(w, model.Invalid("date", "must be YYYY-MM-DD"))
			return
		}
		sum := a.Sales.ForDay(day)
		writeJSON(w, http.StatusOK, daySummaryView{DaySummary: sum, TotalFormatted: model.FormatMoney(sum.Total)})
	case http.MethodPost:
		if a.rejectIfClosing(w) {
			return
		}
		var req saleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		qty, err := model.ParseWhole(req.Qty)
		if err != nil {
			writeDomainError(w, model.Invalid("qty", "must be a whole number"))
			return
		}
		sale, err := a.Sales.Record(req.Code, qty)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sale)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) saleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if a.rejectIfClosing(w) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/sales/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	sale, err := a.Sales.ReverseWithConfirm(id, confirmFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *App) backupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	doc, err := backup.Export(a.Store.Snapshot())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(a.Sales.TodayKey())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (a *App) restoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if a.rejectIfClosing(w) {
		return
	}
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			WriteJSONError(w, http.StatusRequestEntityTooLarge, "backup_too_large", "")
			return
		}
		WriteJSONError(w, http.StatusBadRequest, "read_error", err.Error())
		return
	}
	st, err := backup.Restore(a.Store, doc, confirmFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"products": len(st.Products), "sales": len(st.Sales)})
	obs.Logger.Info("state_restored",
		"request_id", RequestIDFromContext(r.Context()),
		"products", len(st.Products),
		"sales", len(st.Sales),
	)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := a.Store.Snapshot()
	today := a.Sales.Today()
	saves, failures := a.Store.Stats()
	lowStock := 0
	for _, p := range snap.Products {
		if model.StockLevel(p.Stock, a.Cfg.LowStockThreshold) != model.StockOK {
			lowStock++
		}
	}
	m := map[string]any{
		"products":        len(snap.Products),
		"products_low":    lowStock,
		"sales":           len(snap.Sales),
		"sales_today":     len(today.Sales),
		"total_today":     model.FormatMoney(today.Total),
		"state_saves":     saves,
		"state_save_fail": failures,
		"uptime_sec":      time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Stockkeeper API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
