package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/capture"
	"github.com/evanly-gh/remember-me/internal/roster"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/evanly-gh/remember-me/internal/web/middleware"
)

// maxPhotoUploadSize bounds multipart photo uploads.
const maxPhotoUploadSize = 64 << 20 // 64 MB

// RecordsHandler handles the photo record endpoints. Creation runs through a
// capture session so the upload-then-insert ordering is enforced in one place.
type RecordsHandler struct {
	records store.RecordStore
	blobs   store.BlobStore
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(records store.RecordStore, blobs store.BlobStore) *RecordsHandler {
	return &RecordsHandler{
		records: records,
		blobs:   blobs,
	}
}

// CreateRecordRequest represents the JSON variant of the submit request.
// Photo is base64, with or without a data-URI prefix.
type CreateRecordRequest struct {
	Photo    string `json:"photo"`
	Name     string `json:"name"`
	Event    string `json:"event"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

// Create handles POST /api/v1/records: upload the photo, then insert the
// record referencing it. Accepts multipart form data or JSON with a base64
// photo.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())

	photo, form, ok := h.parseSubmit(w, r)
	if !ok {
		return
	}
	if len(photo) == 0 {
		respondError(w, http.StatusBadRequest, "photo is required")
		return
	}

	session := capture.NewSession(owner, nil, h.records, h.blobs)
	session.Capture(r.Context(), photo, form)

	record, err := session.Submit(r.Context())
	if err != nil {
		var vErr *capture.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("submit failed for owner %s: %v", sanitizeForLog(owner), err)
		respondError(w, http.StatusInternalServerError, "failed to save record")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// parseSubmit reads the photo bytes and metadata form from either a
// multipart or a JSON request body.
func (h *RecordsHandler) parseSubmit(w http.ResponseWriter, r *http.Request) ([]byte, capture.Form, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, capture.Form{}, false
		}

		var photo []byte
		file, _, err := r.FormFile("photo")
		if err == nil {
			defer file.Close()
			photo, err = io.ReadAll(file)
			if err != nil {
				respondError(w, http.StatusBadRequest, "failed to read photo")
				return nil, capture.Form{}, false
			}
		}

		return photo, capture.Form{
			Name:     r.FormValue("name"),
			Event:    r.FormValue("event"),
			Location: r.FormValue("location"),
			Date:     r.FormValue("date"),
		}, true
	}

	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, capture.Form{}, false
	}

	var photo []byte
	if req.Photo != "" {
		decoded, err := analysis.DecodeImagePayload(req.Photo)
		if err != nil {
			respondError(w, http.StatusBadRequest, "photo is not valid base64")
			return nil, capture.Form{}, false
		}
		photo = decoded
	}

	return photo, capture.Form{
		Name:     req.Name,
		Event:    req.Event,
		Location: req.Location,
		Date:     req.Date,
	}, true
}

// List handles GET /api/v1/records: all records for the calling owner,
// newest first.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())

	records, err := h.records.ListByOwner(r.Context(), owner)
	if err != nil {
		log.Printf("failed to list records for owner %s: %v", sanitizeForLog(owner), err)
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []roster.PhotoRecord{}
	}

	respondJSON(w, http.StatusOK, records)
}

// UpdateRecordRequest represents the editable record fields.
type UpdateRecordRequest struct {
	Name     string `json:"name"`
	Event    string `json:"event"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

// Update handles PUT /api/v1/records/{id}.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	fields := store.RecordFields{
		Name:     name,
		Event:    strings.TrimSpace(req.Event),
		Location: strings.TrimSpace(req.Location),
		Date:     strings.TrimSpace(req.Date),
	}

	if err := h.records.Update(r.Context(), owner, id, fields); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("failed to update record %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to update record")
		return
	}

	record, err := h.records.Get(r.Context(), owner, id)
	if err != nil {
		log.Printf("failed to reload record %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to load updated record")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/records/{id}.
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.records.Delete(r.Context(), owner, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("failed to delete record %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
