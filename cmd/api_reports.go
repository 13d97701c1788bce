package cmd

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"qctrack/internal/usecase/report"
)

func (h *apiHandler) larReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.LineAcceptanceRate(r.Context(), reportFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *apiHandler) defectTrendReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.DefectTrend(r.Context(), reportFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// exportReport buffers the CSV so that a failure still produces a JSON error response.
func (h *apiHandler) exportReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	encoding := strings.TrimSpace(r.URL.Query().Get("encoding"))
	if encoding == "" {
		encoding = h.cfg.CSVEncoding
	}
	normalized, err := report.NormalizeEncoding(encoding)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.ExportCSV(r.Context(), &buf, name, reportFilterFromQuery(r), normalized); err != nil {
		writeServiceError(w, r, err)
		return
	}

	charset := "utf-8"
	if normalized == report.EncodingShiftJIS {
		charset = "shift_jis"
	}
	w.Header().Set("Content-Type", "text/csv; charset="+charset)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
