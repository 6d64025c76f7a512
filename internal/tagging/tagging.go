// Package tagging writes a track's stored metadata back into an audio file.
package tagging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/domain"
)

// ErrUnsupported is returned by Rewrite for formats it cannot tag.
var ErrUnsupported = errors.New("unsupported file format")

// Fields is the flattened set of values written into a tag. Empty strings mean
// "remove the field".
type Fields struct {
	Title  string
	Artist string
	Album  string
	Year   string
	Genre  string
	Track  string
}

// FieldsFor flattens a track the way downloads present it: the row title wins
// over the tag title.
func FieldsFor(track *domain.Track) Fields {
	md := track.ID3
	f := Fields{
		Title:  track.TagTitle(),
		Artist: deref(md.Artist),
		Album:  deref(md.Album),
		Genre:  deref(md.Genre),
	}
	if md.Year != nil {
		f.Year = strconv.Itoa(*md.Year)
	}
	if md.Track != nil {
		f.Track = strconv.Itoa(*md.Track)
	}
	return f
}

// Supported reports whether Rewrite can tag files with this extension.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case constants.ExtMP3, constants.ExtFLAC:
		return true
	}
	return false
}

// Rewrite replaces the managed tag fields of the file at filePath in place.
// Frames it does not manage, such as cover art, are kept.
func Rewrite(filePath string, track *domain.Track) error {
	fields := FieldsFor(track)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case constants.ExtMP3:
		return rewriteMP3(filePath, fields)
	case constants.ExtFLAC:
		return rewriteFLAC(filePath, fields)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filePath))
	}
}

// DownloadName is the attachment filename for a download. Everything outside
// [A-Za-z0-9_.-] becomes an underscore; an empty title falls back to the stored name.
func DownloadName(title, storedName, ext string) string {
	if title == "" {
		return storedName
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-' || r == '.':
			return r
		}
		return '_'
	}, title) + ext
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
