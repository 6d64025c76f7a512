package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/mixtape/internal/app"
	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/domain"
	"github.com/cesargomez89/mixtape/internal/http/dto"
)

const (
	msgMissingFields  = "Missing required fields."
	msgUploadFailed   = "Upload failed"
	msgUploadTooLarge = "Upload too large"
	msgTrackNotFound  = "Track not found"
	msgFileNotFound   = "File not found"
	msgNoFields       = "No fields to update"
	msgInvalidID      = "Invalid track id"
	msgInvalidBody    = "Invalid request body"
	msgUpdateFailed   = "Update failed"
	msgDeleteFailed   = "Delete failed"
	msgListFailed     = "List failed"
	msgFetchFailed    = "Fetch failed"
	msgDeleted        = "Track and file deleted"
)

func (h *Handler) UploadTrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MultipartMemory); err != nil {
		if isMaxBytes(err) {
			writeError(w, http.StatusRequestEntityTooLarge, msgUploadTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, msgMissingFields)
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files
	}

	file, header, fileErr := r.FormFile(constants.FormFieldAudio)
	if fileErr == nil {
		defer file.Close()
	}

	req := dto.UploadRequest{
		Title:   r.FormValue(constants.FormFieldTitle),
		UserID:  r.FormValue(constants.FormFieldUserID),
		HasFile: fileErr == nil,
	}
	userID, errs := req.Validate()
	if len(errs) > 0 {
		writeValidation(w, msgMissingFields, errs)
		return
	}

	track, err := h.Tracks.Upload(r.Context(), app.UploadInput{
		Body:     file,
		Filename: header.Filename,
		Title:    req.Title,
		UserID:   userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, msgMissingFields)
			return
		}
		h.writeFailure(w, r, msgUploadFailed, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TrackResponse{Track: track})
}

func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.Tracks.List(r.Context())
	if err != nil {
		h.writeFailure(w, r, msgListFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TracksResponse{Tracks: tracks})
}

func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}

	track, err := h.Tracks.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgTrackNotFound)
			return
		}
		h.writeFailure(w, r, msgFetchFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TrackResponse{Track: track})
}

func (h *Handler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}

	var patch domain.TrackPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidBody, Details: err.Error()})
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, msgNoFields)
		return
	}
	if errs := dto.ValidatePatch(patch); len(errs) > 0 {
		writeValidation(w, msgInvalidBody, errs)
		return
	}

	track, err := h.Tracks.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, msgTrackNotFound)
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, msgNoFields)
		default:
			h.writeFailure(w, r, msgUpdateFailed, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.TrackResponse{Track: track})
}

func (h *Handler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}

	if err := h.Tracks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgTrackNotFound)
			return
		}
		h.writeFailure(w, r, msgDeleteFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgDeleted})
}

func trackID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}
