package cmd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qctrack/internal/ports"
	"qctrack/internal/usecase/defect"
)

type recordDefectRequest struct {
	InspectionID   *uint64         `json:"inspection_id,omitempty" jsonschema:"description=Links the defect to an inspection; station and lot default from it"`
	Station        string          `json:"station,omitempty" jsonschema:"maxLength=3"`
	LotNumber      string          `json:"lot_number,omitempty"`
	ItemNumber     string          `json:"item_number,omitempty"`
	MachineLineNo  string          `json:"machine_line_no,omitempty"`
	DefectCode     string          `json:"defect_code" jsonschema:"minLength=1"`
	DefectCategory string          `json:"defect_category,omitempty" jsonschema:"enum=COSMETIC,enum=FUNCTIONAL,enum=DIMENSIONAL,enum=PACKAGING,enum=OTHER"`
	Qty            int             `json:"qty" jsonschema:"minimum=1"`
	FoundAt        *time.Time      `json:"found_at,omitempty"`
	Remark         string          `json:"remark,omitempty"`
	Attributes     json.RawMessage `json:"attributes,omitempty" jsonschema:"type=object"`
	UserID         uint64          `json:"user_id,omitempty"`
}

type updateDefectRequest struct {
	DefectCode     *string         `json:"defect_code,omitempty"`
	DefectCategory *string         `json:"defect_category,omitempty" jsonschema:"enum=COSMETIC,enum=FUNCTIONAL,enum=DIMENSIONAL,enum=PACKAGING,enum=OTHER"`
	Qty            *int            `json:"qty,omitempty" jsonschema:"minimum=1"`
	Remark         *string         `json:"remark,omitempty"`
	Attributes     json.RawMessage `json:"attributes,omitempty" jsonschema:"type=object"`
	UserID         uint64          `json:"user_id,omitempty"`
}

func (h *apiHandler) listDefects(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ports.DefectFilter{
		Station:    q.Get("station"),
		LotNumber:  q.Get("lot_number"),
		DefectCode: q.Get("defect_code"),
		FiscalYear: q.Get("fiscal_year"),
		WorkWeek:   q.Get("work_week"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := strings.TrimSpace(q.Get("inspection_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid inspection_id: "+raw)
			return
		}
		filter.InspectionID = &id
	}

	items, err := h.defects.ListDefects(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *apiHandler) recordDefect(w http.ResponseWriter, r *http.Request) {
	var req recordDefectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.defects.RecordDefect(r.Context(), defect.RecordDefectInput{
		InspectionID:   req.InspectionID,
		Station:        req.Station,
		LotNumber:      req.LotNumber,
		ItemNumber:     req.ItemNumber,
		MachineLineNo:  req.MachineLineNo,
		DefectCode:     req.DefectCode,
		DefectCategory: req.DefectCategory,
		Qty:            req.Qty,
		FoundAt:        req.FoundAt,
		Remark:         req.Remark,
		Attributes:     req.Attributes,
		UserID:         req.UserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *apiHandler) getDefect(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := h.defects.GetDefect(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *apiHandler) updateDefect(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateDefectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.defects.UpdateDefect(r.Context(), id, defect.UpdateDefectInput{
		DefectCode:     req.DefectCode,
		DefectCategory: req.DefectCategory,
		Qty:            req.Qty,
		Remark:         req.Remark,
		Attributes:     req.Attributes,
	}, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *apiHandler) deleteDefect(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.defects.DeleteDefect(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
