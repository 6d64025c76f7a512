package dto

import (
	"encoding/json"
	"testing"

	"github.com/cesargomez89/mixtape/internal/domain"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "title", Message: "is required"}
	if err.Error() != "title: is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "title: is required")
	}
}

func TestToMap(t *testing.T) {
	errs := []ValidationError{
		{Field: "title", Message: "is required"},
		{Field: "user_id", Message: "must be a positive integer"},
	}
	m := ToMap(errs)
	if len(m) != 2 {
		t.Errorf("ToMap() returned %d items, want 2", len(m))
	}
	if m["user_id"] != "must be a positive integer" {
		t.Errorf("ToMap()[user_id] = %q", m["user_id"])
	}
}

func TestToResponse(t *testing.T) {
	errs := []ValidationError{
		{Field: "title", Message: "is required"},
		{Field: "year", Message: "invalid"},
	}
	resp := ToResponse(errs)
	expected := "title: is required; year: invalid"
	if resp != expected {
		t.Errorf("ToResponse() = %q, want %q", resp, expected)
	}
}

func TestUploadRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		req      UploadRequest
		wantID   int64
		wantErrs []string
	}{
		{name: "valid", req: UploadRequest{Title: "Song", UserID: "7", HasFile: true}, wantID: 7},
		{name: "missing file", req: UploadRequest{Title: "Song", UserID: "7"}, wantID: 7, wantErrs: []string{"audio"}},
		{name: "blank title", req: UploadRequest{Title: "  ", UserID: "7", HasFile: true}, wantID: 7, wantErrs: []string{"title"}},
		{name: "missing user", req: UploadRequest{Title: "Song", HasFile: true}, wantErrs: []string{"user_id"}},
		{name: "non-integer user", req: UploadRequest{Title: "Song", UserID: "abc", HasFile: true}, wantErrs: []string{"user_id"}},
		{name: "negative user", req: UploadRequest{Title: "Song", UserID: "-1", HasFile: true}, wantErrs: []string{"user_id"}},
		{name: "everything missing", req: UploadRequest{}, wantErrs: []string{"audio", "title", "user_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, errs := tt.req.Validate()
			if id != tt.wantID {
				t.Errorf("Validate() id = %d, want %d", id, tt.wantID)
			}
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("Validate() returned %d errors (%v), want %d", len(errs), errs, len(tt.wantErrs))
			}
			for i, field := range tt.wantErrs {
				if errs[i].Field != field {
					t.Errorf("error %d field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErrs int
	}{
		{"no id3", `{"title":"x"}`, 0},
		{"valid", `{"id3":{"year":1999,"track":"3","duration":12.5}}`, 0},
		{"nulls", `{"id3":{"year":null,"track":null}}`, 0},
		{"bad year", `{"id3":{"year":-5}}`, 1},
		{"bad track", `{"id3":{"track":100000}}`, 1},
		{"negative duration", `{"id3":{"duration":-1}}`, 1},
		{"all bad", `{"id3":{"year":12345,"track":-1,"duration":-2}}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p domain.TrackPatch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			errs := ValidatePatch(p)
			if len(errs) != tt.wantErrs {
				t.Errorf("ValidatePatch() returned %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
		})
	}
}
