package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/mixtape/internal/constants"
)

// NewFilename builds a collision-resistant blob name:
// <unix-millis>-<random>-<sanitized original name>.
func NewFilename(original string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), suffix, Sanitize(original))
}

// Sanitize reduces an uploaded filename to [A-Za-z0-9._-]. Directory parts are
// dropped and dot runs collapse so the result is always a single safe path element.
func Sanitize(s string) string {
	s = s[strings.LastIndexAny(s, `/\`)+1:]

	mapped := strings.Map(func(r rune) rune {
		if isSafeRune(r) {
			return r
		}
		return '_'
	}, s)

	for strings.Contains(mapped, "..") {
		mapped = strings.ReplaceAll(mapped, "..", ".")
	}
	mapped = strings.Trim(mapped, ".")

	if len(mapped) > constants.MaxStoredNameLength {
		ext := path.Ext(mapped)
		if len(ext) >= constants.MaxStoredNameLength {
			ext = ""
		}
		mapped = mapped[:constants.MaxStoredNameLength-len(ext)] + ext
	}

	if mapped == "" {
		return "audio"
	}
	return mapped
}

func isSafeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-'
}
