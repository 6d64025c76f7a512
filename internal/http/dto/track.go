package dto

import (
	"github.com/cesargomez89/mixtape/internal/domain"
)

// UploadRequest holds the raw multipart form fields of an upload.
type UploadRequest struct {
	Title   string
	UserID  string
	HasFile bool
}

// Validate checks the form and returns the parsed owner id.
func (r *UploadRequest) Validate() (int64, []ValidationError) {
	var errs []ValidationError

	if !r.HasFile {
		errs = append(errs, ValidationError{Field: "audio", Message: "is required"})
	}
	errs = append(errs, validateRequired("title", r.Title)...)
	userID, idErrs := validateID("user_id", r.UserID)
	errs = append(errs, idErrs...)

	return userID, errs
}

// ValidatePatch range-checks the numeric fields of an edit.
func ValidatePatch(p domain.TrackPatch) []ValidationError {
	if !p.ID3.Set || p.ID3.Value == nil {
		return nil
	}
	md := p.ID3.Value

	var errs []ValidationError
	errs = append(errs, validateYear(md.Year.Value)...)
	errs = append(errs, validateTrackNumber(md.Track.Value)...)
	errs = append(errs, validateDuration(md.Duration.Value)...)
	return errs
}

type TrackResponse struct {
	Track *domain.Track `json:"track"`
}

type TracksResponse struct {
	Tracks []domain.Track `json:"tracks"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
