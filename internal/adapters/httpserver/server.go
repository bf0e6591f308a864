package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/phenrril/reconcell/internal/adapters/xlsxreport"
	"github.com/phenrril/reconcell/internal/domain"
	"github.com/phenrril/reconcell/internal/usecase"
)

type Server struct {
	mux    *http.ServeMux
	engine *usecase.Engine
}

func New(engine *usecase.Engine) http.Handler {
	s := &Server{mux: http.NewServeMux(), engine: engine}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/imports/sales", s.handleImportSales)
	s.mux.HandleFunc("/api/imports/refunds", s.handleImportRefunds)
	s.mux.HandleFunc("/api/imports/shipments", s.handleImportShipments)
	s.mux.HandleFunc("/api/imports/pending", s.handlePending)
	s.mux.HandleFunc("/api/imports/decide", s.handleDecide)
	s.mux.HandleFunc("/api/imports/report", s.handleReport)

	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.HandleFunc("/api/products/", s.handleProduct)
	s.mux.HandleFunc("/api/logs/prices", s.handlePriceLogs)

	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/recalculate", s.handleRecalculate)

	s.mux.HandleFunc("/api/backup", s.handleBackup)
	s.mux.HandleFunc("/api/restore", s.handleRestore)

	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"status": "ok"})
	})
}

// reportBody pulls the uploaded file out of a multipart form, or the raw
// body when the client posts the workbook directly.
func reportBody(r *http.Request) ([]byte, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (s *Server) handleImportSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	data, err := reportBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"status": "error", "message": "upload: " + err.Error()})
		return
	}
	rows, skipped, err := xlsxreport.ParseSales(data)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.engine.ImportSales(r.Context(), rows, skipped)
	if err != nil {
		writeError(w, err)
		return
	}
	if report.NeedsReview {
		writeJSON(w, 202, report)
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handleImportRefunds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	data, err := reportBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"status": "error", "message": "upload: " + err.Error()})
		return
	}
	rows, skipped, err := xlsxreport.ParseRefunds(data)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.engine.ImportRefunds(r.Context(), rows, skipped)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handleImportShipments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	data, err := reportBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"status": "error", "message": "upload: " + err.Error()})
		return
	}
	rows, skipped, err := xlsxreport.ParseShipments(data)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.engine.ImportShipments(r.Context(), rows, skipped)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.engine.PendingCandidates()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list})
	case http.MethodDelete:
		if err := s.engine.CancelImport(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "cancelled"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		ImportSKU string `json:"importSku"`
		Approve   bool   `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]any{"status": "error", "message": "invalid json"})
		return
	}
	report, err := s.engine.Decide(r.Context(), req.ImportSKU, req.Approve)
	if err != nil {
		writeError(w, err)
		return
	}
	if report.NeedsReview {
		writeJSON(w, 202, report)
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.engine.LastReport()
	if rep == nil {
		http.Error(w, "report", 404)
		return
	}
	writeJSON(w, 200, rep)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	sku := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if sku == "" {
		http.Error(w, "sku", 404)
		return
	}
	p, logs, err := s.engine.Product(r.Context(), sku)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"product": p, "priceLogs": logs})
}

func (s *Server) handlePriceLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.engine.PriceLogs(r.Context(), r.URL.Query().Get("sku"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": logs})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.engine.Config(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, cfg)
	case http.MethodPut:
		var cfg domain.EngineConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, 400, map[string]any{"status": "error", "message": "invalid json"})
			return
		}
		if err := s.engine.UpdateConfig(r.Context(), cfg); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := s.engine.Recalculate(r.Context(), true); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=reconcell-backup.json")
	writeJSON(w, 200, snap)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	data, err := reportBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"status": "error", "message": "upload: " + err.Error()})
		return
	}
	if err := s.engine.Restore(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "restored"})
}

func writeError(w http.ResponseWriter, err error) {
	var parseErr *domain.ParseError
	var restoreErr *domain.RestoreFormatError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]any{"status": "error", "message": "not found"})
	case errors.Is(err, domain.ErrNoOpenImport):
		writeJSON(w, 404, map[string]any{"status": "error", "message": err.Error()})
	case errors.Is(err, domain.ErrImportOpen), errors.Is(err, domain.ErrReviewPending):
		writeJSON(w, 409, map[string]any{"status": "error", "message": err.Error()})
	case errors.As(err, &parseErr), errors.As(err, &restoreErr):
		writeJSON(w, 400, map[string]any{"status": "error", "message": err.Error()})
	default:
		writeJSON(w, 500, map[string]any{"status": "error", "message": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
