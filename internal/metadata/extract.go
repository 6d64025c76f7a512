// Package metadata reads tag data out of uploaded audio.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/cesargomez89/mixtape/internal/domain"
)

// ErrNoDuration marks an Extract result whose tags are usable but whose duration
// could not be measured.
var ErrNoDuration = errors.New("duration unavailable")

// Prober measures the playing time of an audio stream in seconds.
type Prober interface {
	Duration(ctx context.Context, r io.Reader) (float64, error)
}

// Extractor turns a stored blob into a domain.Metadata record.
type Extractor struct {
	prober Prober
}

// NewExtractor returns an Extractor. prober may be nil, in which case duration
// comes only from a TLEN frame.
func NewExtractor(prober Prober) *Extractor {
	return &Extractor{prober: prober}
}

// Extract parses the tag block of r. A file without tags yields an empty record and
// no error; a malformed tag yields an error.
func (e *Extractor) Extract(ctx context.Context, r io.ReadSeeker) (domain.Metadata, error) {
	var md domain.Metadata

	m, err := tag.ReadFrom(r)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
	case err != nil:
		return domain.Metadata{}, fmt.Errorf("failed to read tags: %w", err)
	default:
		md = fromTag(m)
	}

	if md.Duration == nil && e.prober != nil {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return md, fmt.Errorf("%w: rewind: %v", ErrNoDuration, err)
		}
		seconds, err := e.prober.Duration(ctx, r)
		if err != nil {
			return md, fmt.Errorf("%w: %v", ErrNoDuration, err)
		}
		md.Duration = &seconds
	}

	return md, nil
}

func fromTag(m tag.Metadata) domain.Metadata {
	var md domain.Metadata

	md.Title = nonEmpty(m.Title())
	md.Artist = nonEmpty(m.Artist())
	md.Album = nonEmpty(m.Album())
	md.Genre = nonEmpty(m.Genre())

	if year := m.Year(); year > 0 {
		md.Year = &year
	}
	if track, _ := m.Track(); track > 0 {
		md.Track = &track
	}
	md.Duration = tlenSeconds(m.Raw())

	return md
}

// tlenSeconds reads the ID3v2 TLEN frame, which carries the length in milliseconds.
func tlenSeconds(raw map[string]interface{}) *float64 {
	v, ok := raw["TLEN"]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	ms, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || ms <= 0 {
		return nil
	}
	seconds := ms / 1000
	return &seconds
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
