package cmd

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"qctrack/internal/usecase/part"
)

type createPartRequest struct {
	PartNumber  string `json:"part_number" jsonschema:"minLength=1,maxLength=64"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
	Version     string `json:"version,omitempty"`
	PartSite    string `json:"part_site,omitempty"`
	Active      *bool  `json:"active,omitempty" jsonschema:"default=true"`
}

type updatePartRequest struct {
	Description *string `json:"description,omitempty"`
	Model       *string `json:"model,omitempty"`
	Version     *string `json:"version,omitempty"`
	PartSite    *string `json:"part_site,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (h *apiHandler) listParts(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "invalid active: "+raw)
			return
		}
		activeOnly = parsed
	}

	items, err := h.parts.ListParts(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *apiHandler) createPart(w http.ResponseWriter, r *http.Request) {
	var req createPartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.parts.CreatePart(r.Context(), part.CreatePartInput{
		PartNumber:  req.PartNumber,
		Description: req.Description,
		Model:       req.Model,
		Version:     req.Version,
		PartSite:    req.PartSite,
		Active:      req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *apiHandler) importParts(w http.ResponseWriter, r *http.Request) {
	result, err := h.parts.ImportParts(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *apiHandler) getPart(w http.ResponseWriter, r *http.Request) {
	found, err := h.parts.GetPart(r.Context(), chi.URLParam(r, "partNumber"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *apiHandler) updatePart(w http.ResponseWriter, r *http.Request) {
	var req updatePartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.parts.UpdatePart(r.Context(), chi.URLParam(r, "partNumber"), part.UpdatePartInput{
		Description: req.Description,
		Model:       req.Model,
		Version:     req.Version,
		PartSite:    req.PartSite,
		Active:      req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *apiHandler) deletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.parts.DeletePart(r.Context(), chi.URLParam(r, "partNumber")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
