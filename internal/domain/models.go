package domain

import (
	"path"
	"strings"
	"time"

	"github.com/cesargomez89/mixtape/internal/constants"
)

// Track is a stored audio file plus the metadata the library keeps for it.
type Track struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Title     string    `json:"title" db:"title"`
	FileURL   string    `json:"file_url" db:"file_url"`
	ID3       Metadata  `json:"id3" db:"id3"`
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
}

// StoredName returns the blob name the track's file_url points at.
func (t *Track) StoredName() string {
	return path.Base(t.FileURL)
}

// TagTitle is the title written into downloaded files: the row title wins over the tag title.
func (t *Track) TagTitle() string {
	if t.Title != "" {
		return t.Title
	}
	if t.ID3.Title != nil {
		return *t.ID3.Title
	}
	return ""
}

// Apply merges an edit into the track in place.
func (t *Track) Apply(p TrackPatch) {
	if title, ok := p.NewTitle(); ok {
		t.Title = title
	}
	if p.ID3.Set && p.ID3.Value != nil {
		t.ID3 = t.ID3.Merge(*p.ID3.Value)
	}
}

// TrackPatch is the body of an edit request.
type TrackPatch struct {
	Title Optional[string]        `json:"title"`
	ID3   Optional[MetadataPatch] `json:"id3"`
}

// NewTitle returns the replacement title. A null or blank title leaves the row title alone.
func (p TrackPatch) NewTitle() (string, bool) {
	if !p.Title.Set || p.Title.Value == nil {
		return "", false
	}
	title := strings.TrimSpace(*p.Title.Value)
	return title, title != ""
}

// Empty reports whether the patch would change nothing at all.
func (p TrackPatch) Empty() bool {
	_, hasTitle := p.NewTitle()
	return !hasTitle && (!p.ID3.Set || p.ID3.Value == nil)
}

// FileURLFor builds the public locator for a stored blob name.
func FileURLFor(storedName string) string {
	return constants.UploadsURLPrefix + storedName
}

// User owns uploaded tracks.
type User struct {
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	ID          int64     `json:"id" db:"id"`
}
