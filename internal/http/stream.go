package httpapp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/storage"
)

const msgRangeNotSatisfiable = "Requested Range Not Satisfiable"

// ErrRangeNotSatisfiable is returned by ParseRange for any header it will not serve.
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")

// ByteRange is an inclusive span of a resource.
type ByteRange struct {
	Start int64
	End   int64
}

func (b ByteRange) Length() int64 {
	return b.End - b.Start + 1
}

// ContentRange formats the span for a 206 response.
func (b ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", b.Start, b.End, total)
}

// ParseRange parses a single "bytes=<start>-<end>" range against a resource of
// total bytes. end may be omitted and then means the last byte. Suffix ranges
// ("bytes=-500"), multiple ranges, start > end and end >= total are all rejected.
// No whitespace is accepted anywhere in the header value.
func ParseRange(header string, total int64) (ByteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return ByteRange{}, ErrRangeNotSatisfiable
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return ByteRange{}, ErrRangeNotSatisfiable
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return ByteRange{}, err
	}

	end := total - 1
	if endStr != "" {
		end, err = parseOffset(endStr)
		if err != nil {
			return ByteRange{}, err
		}
	}

	if start > end || end >= total {
		return ByteRange{}, ErrRangeNotSatisfiable
	}
	return ByteRange{Start: start, End: end}, nil
}

// parseOffset accepts only ASCII digits, so signs and spaces are rejected.
func parseOffset(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrRangeNotSatisfiable
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrRangeNotSatisfiable
	}
	return n, nil
}

func (h *Handler) StreamTrack(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	obj, err := h.Tracks.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgFileNotFound)
			return
		}
		h.writeFailure(w, r, "Stream failed", err)
		return
	}
	defer obj.Close()

	total := obj.Size
	header := w.Header()
	header.Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		header.Set("Content-Type", constants.ContentTypeForExt(strings.ToLower(path.Ext(name))))
		header.Set("Content-Length", strconv.FormatInt(total, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj); err != nil {
			h.Logger.Debug("Stream aborted", "blob", name, "error", err)
		}
		return
	}

	span, err := ParseRange(rangeHeader, total)
	if err != nil {
		header.Set("Content-Range", fmt.Sprintf("bytes */%d", total))
		writeError(w, http.StatusRequestedRangeNotSatisfiable, msgRangeNotSatisfiable)
		return
	}

	if _, err := obj.Seek(span.Start, io.SeekStart); err != nil {
		h.writeFailure(w, r, "Stream failed", err)
		return
	}

	header.Set("Content-Type", constants.ContentTypeForExt(strings.ToLower(path.Ext(name))))
	header.Set("Content-Range", span.ContentRange(total))
	header.Set("Content-Length", strconv.FormatInt(span.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, obj, span.Length()); err != nil {
		h.Logger.Debug("Stream aborted", "blob", name, "error", err)
	}
}
