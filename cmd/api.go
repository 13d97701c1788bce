package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
	"qctrack/internal/usecase/defect"
	"qctrack/internal/usecase/inspection"
	"qctrack/internal/usecase/part"
	"qctrack/internal/usecase/report"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
	maxImportBytes  = 8 << 20
)

type inspectionAPI interface {
	GenerateInspectionNumber(ctx context.Context, station string, referenceDate time.Time, workWeek string) (string, error)
	GetNextSamplingRound(ctx context.Context, station string, lotNumber string) (int, error)
	CreateInspection(ctx context.Context, input inspection.CreateInspectionInput) (ports.InspectionRecord, error)
	CreateDerivedRecord(ctx context.Context, sourceRecordID uint64, requestingUserID uint64) (ports.InspectionRecord, error)
	GetInspection(ctx context.Context, id uint64) (ports.InspectionRecord, error)
	ListInspections(ctx context.Context, filter ports.InspectionFilter) ([]ports.InspectionRecord, error)
	UpdateInspection(ctx context.Context, id uint64, input inspection.UpdateInspectionInput, userID uint64) (ports.InspectionRecord, error)
	JudgeInspection(ctx context.Context, id uint64, judgment string, userID uint64) (ports.InspectionRecord, error)
	DeleteInspection(ctx context.Context, id uint64) error
}

type defectAPI interface {
	RecordDefect(ctx context.Context, input defect.RecordDefectInput) (ports.DefectRecord, error)
	GetDefect(ctx context.Context, id uint64) (ports.DefectRecord, error)
	ListDefects(ctx context.Context, filter ports.DefectFilter) ([]ports.DefectRecord, error)
	UpdateDefect(ctx context.Context, id uint64, input defect.UpdateDefectInput, userID uint64) (ports.DefectRecord, error)
	DeleteDefect(ctx context.Context, id uint64) error
}

type partAPI interface {
	CreatePart(ctx context.Context, input part.CreatePartInput) (ports.Part, error)
	GetPart(ctx context.Context, partNumber string) (ports.Part, error)
	ListParts(ctx context.Context, activeOnly bool) ([]ports.Part, error)
	UpdatePart(ctx context.Context, partNumber string, input part.UpdatePartInput) (ports.Part, error)
	DeletePart(ctx context.Context, partNumber string) error
	ImportParts(ctx context.Context, r io.Reader) (part.ImportResult, error)
}

type reportAPI interface {
	LineAcceptanceRate(ctx context.Context, filter ports.ReportFilter) (report.LARReport, error)
	DefectTrend(ctx context.Context, filter ports.ReportFilter) (report.DefectTrendReport, error)
	ExportCSV(ctx context.Context, w io.Writer, name string, filter ports.ReportFilter, encoding string) error
}

type apiConfig struct {
	RequestTimeout time.Duration
	CSVEncoding    string
}

type apiHandler struct {
	inspections inspectionAPI
	defects     defectAPI
	parts       partAPI
	reports     reportAPI
	cfg         apiConfig
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

func newAPIHandler(inspections inspectionAPI, defects defectAPI, parts partAPI, reports reportAPI, cfg apiConfig) http.Handler {
	h := &apiHandler{
		inspections: inspections,
		defects:     defects,
		parts:       parts,
		reports:     reports,
		cfg:         cfg,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(accessLogMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/inspection-numbers/next", h.nextInspectionNumber)
		r.Get("/sampling-rounds/next", h.nextSamplingRound)

		r.Route("/inspections", func(r chi.Router) {
			r.Get("/", h.listInspections)
			r.Post("/", h.createInspection)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getInspection)
				r.Patch("/", h.updateInspection)
				r.Delete("/", h.deleteInspection)
				r.Post("/judgment", h.judgeInspection)
				r.Post("/derive", h.deriveInspection)
			})
		})

		r.Route("/defects", func(r chi.Router) {
			r.Get("/", h.listDefects)
			r.Post("/", h.recordDefect)
			r.Get("/{id}", h.getDefect)
			r.Patch("/{id}", h.updateDefect)
			r.Delete("/{id}", h.deleteDefect)
		})

		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.listParts)
			r.Post("/", h.createPart)
			r.Post("/import", h.importParts)
			r.Get("/{partNumber}", h.getPart)
			r.Patch("/{partNumber}", h.updatePart)
			r.Delete("/{partNumber}", h.deletePart)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/lar", h.larReport)
			r.Get("/defect-trend", h.defectTrendReport)
			r.Get("/{name}/export.csv", h.exportReport)
		})
	})

	return r
}

// requestIDMiddleware keeps an incoming X-Request-ID or assigns a new uuid, and puts it
// on the response and into the request's log attributes.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)

		logging.Info(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

func statusForError(err error) (int, string) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound, err.Error()
	case errs.KindValidation:
		return http.StatusBadRequest, err.Error()
	case errs.KindConflict:
		return http.StatusConflict, err.Error()
	case errs.KindStore:
		return http.StatusServiceUnavailable, "store unavailable, retry later"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "request timed out"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Int("status", status), slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, status, apiErrorResponse{Error: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, apiErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a single JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeBadRequest(w, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		writeBadRequest(w, "invalid "+key+": "+raw)
		return 0, false
	}
	return value, true
}

func reportFilterFromQuery(r *http.Request) ports.ReportFilter {
	q := r.URL.Query()
	return ports.ReportFilter{
		Station:    q.Get("station"),
		FiscalYear: q.Get("fiscal_year"),
		FromWeek:   q.Get("from_week"),
		ToWeek:     q.Get("to_week"),
	}
}
