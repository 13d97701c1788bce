package cmd

import (
	"net/http"
	"strings"
	"time"

	"qctrack/internal/ports"
	"qctrack/internal/usecase/inspection"
)

type createInspectionRequest struct {
	Station          string     `json:"station" jsonschema:"maxLength=3,description=Inspection station code such as OQA or SIV"`
	LotNumber        string     `json:"lot_number" jsonschema:"minLength=1"`
	PartSite         string     `json:"part_site,omitempty"`
	ItemNumber       string     `json:"item_number,omitempty"`
	Model            string     `json:"model,omitempty"`
	Version          string     `json:"version,omitempty"`
	MachineLineNo    string     `json:"machine_line_no,omitempty"`
	SamplingReasonID *uint64    `json:"sampling_reason_id,omitempty"`
	LotQty           int        `json:"lot_qty,omitempty" jsonschema:"minimum=0"`
	Shift            *string    `json:"shift,omitempty"`
	InspectionLineID *string    `json:"inspection_line_id,omitempty"`
	QCRef            *string    `json:"qc_ref,omitempty"`
	SampleQty        *int       `json:"sample_qty,omitempty" jsonschema:"minimum=0"`
	DefectQty        *int       `json:"defect_qty,omitempty" jsonschema:"minimum=0"`
	Judgment         *string    `json:"judgment,omitempty" jsonschema:"enum=ACCEPT,enum=REJECT"`
	InspectionDate   *time.Time `json:"inspection_date,omitempty"`
	UserID           uint64     `json:"user_id,omitempty"`
}

type updateInspectionRequest struct {
	Station          *string `json:"station,omitempty" jsonschema:"description=Must equal the stored value"`
	InspectionNumber *string `json:"inspection_number,omitempty" jsonschema:"description=Must equal the stored value"`
	Round            *int    `json:"round,omitempty" jsonschema:"description=Must equal the stored value"`
	PartSite         *string `json:"part_site,omitempty"`
	ItemNumber       *string `json:"item_number,omitempty"`
	Model            *string `json:"model,omitempty"`
	Version          *string `json:"version,omitempty"`
	MachineLineNo    *string `json:"machine_line_no,omitempty"`
	SamplingReasonID *uint64 `json:"sampling_reason_id,omitempty"`
	LotQty           *int    `json:"lot_qty,omitempty" jsonschema:"minimum=0"`
	Shift            *string `json:"shift,omitempty"`
	InspectionLineID *string `json:"inspection_line_id,omitempty"`
	QCRef            *string `json:"qc_ref,omitempty"`
	SampleQty        *int    `json:"sample_qty,omitempty" jsonschema:"minimum=0"`
	DefectQty        *int    `json:"defect_qty,omitempty" jsonschema:"minimum=0"`
	Judgment         *string `json:"judgment,omitempty" jsonschema:"enum=ACCEPT,enum=REJECT"`
	UserID           uint64  `json:"user_id,omitempty"`
}

type judgeInspectionRequest struct {
	Judgment string `json:"judgment" jsonschema:"enum=ACCEPT,enum=REJECT"`
	UserID   uint64 `json:"user_id,omitempty"`
}

type deriveInspectionRequest struct {
	UserID uint64 `json:"user_id,omitempty"`
}

type nextInspectionNumberResponse struct {
	InspectionNumber string `json:"inspection_number"`
}

type nextSamplingRoundResponse struct {
	Round int `json:"round"`
}

func (h *apiHandler) nextInspectionNumber(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := time.Now()
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeBadRequest(w, "invalid date, want YYYY-MM-DD: "+raw)
			return
		}
		date = parsed
	}

	number, err := h.inspections.GenerateInspectionNumber(r.Context(), q.Get("station"), date, q.Get("work_week"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextInspectionNumberResponse{InspectionNumber: number})
}

func (h *apiHandler) nextSamplingRound(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	round, err := h.inspections.GetNextSamplingRound(r.Context(), q.Get("station"), q.Get("lot_number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextSamplingRoundResponse{Round: round})
}

func (h *apiHandler) listInspections(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	q := r.URL.Query()
	items, err := h.inspections.ListInspections(r.Context(), ports.InspectionFilter{
		Station:    q.Get("station"),
		LotNumber:  q.Get("lot_number"),
		FiscalYear: q.Get("fiscal_year"),
		WorkWeek:   q.Get("work_week"),
		Judgment:   q.Get("judgment"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *apiHandler) createInspection(w http.ResponseWriter, r *http.Request) {
	var req createInspectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.inspections.CreateInspection(r.Context(), inspection.CreateInspectionInput{
		Station:          req.Station,
		LotNumber:        req.LotNumber,
		PartSite:         req.PartSite,
		ItemNumber:       req.ItemNumber,
		Model:            req.Model,
		Version:          req.Version,
		MachineLineNo:    req.MachineLineNo,
		SamplingReasonID: req.SamplingReasonID,
		LotQty:           req.LotQty,
		Shift:            req.Shift,
		InspectionLineID: req.InspectionLineID,
		QCRef:            req.QCRef,
		SampleQty:        req.SampleQty,
		DefectQty:        req.DefectQty,
		Judgment:         req.Judgment,
		InspectionDate:   req.InspectionDate,
		UserID:           req.UserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *apiHandler) getInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := h.inspections.GetInspection(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *apiHandler) updateInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateInspectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.inspections.UpdateInspection(r.Context(), id, inspection.UpdateInspectionInput{
		Station:          req.Station,
		InspectionNumber: req.InspectionNumber,
		Round:            req.Round,
		PartSite:         req.PartSite,
		ItemNumber:       req.ItemNumber,
		Model:            req.Model,
		Version:          req.Version,
		MachineLineNo:    req.MachineLineNo,
		SamplingReasonID: req.SamplingReasonID,
		LotQty:           req.LotQty,
		Shift:            req.Shift,
		InspectionLineID: req.InspectionLineID,
		QCRef:            req.QCRef,
		SampleQty:        req.SampleQty,
		DefectQty:        req.DefectQty,
		Judgment:         req.Judgment,
	}, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *apiHandler) judgeInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req judgeInspectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	judged, err := h.inspections.JudgeInspection(r.Context(), id, req.Judgment, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, judged)
}

func (h *apiHandler) deleteInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.inspections.DeleteInspection(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) deriveInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req deriveInspectionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	derived, err := h.inspections.CreateDerivedRecord(r.Context(), id, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, derived)
}
