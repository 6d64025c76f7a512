package httpapp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/mixtape/internal/domain"
	"github.com/cesargomez89/mixtape/internal/storage"
)

// Download serves a blob with its tags rewritten from the track row.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	d, err := h.Tracks.PrepareDownload(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, msgFileNotFound)
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, msgTrackNotFound)
		default:
			h.writeFailure(w, r, "Download failed", err)
		}
		return
	}
	defer func() {
		if cErr := d.Close(); cErr != nil {
			h.Logger.Warn("Failed to remove scratch file", "error", cErr)
		}
	}()

	header := w.Header()
	header.Set("Content-Type", d.ContentType)
	header.Set("Content-Length", strconv.FormatInt(d.Size, 10))
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, d); err != nil {
		h.Logger.Debug("Download aborted", "blob", name, "error", err)
	}
}
