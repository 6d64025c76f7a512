package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/domain"
	"github.com/cesargomez89/mixtape/internal/logger"
	"github.com/cesargomez89/mixtape/internal/metadata"
	"github.com/cesargomez89/mixtape/internal/storage"
	"github.com/cesargomez89/mixtape/internal/tagging"
)

// TrackRepository is the persistence the track service needs. *store.DB implements it.
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *domain.Track) error
	GetTrack(ctx context.Context, id int64) (*domain.Track, error)
	GetTrackByFileURL(ctx context.Context, fileURL string) (*domain.Track, error)
	ListTracks(ctx context.Context) ([]domain.Track, error)
	UpdateTrack(ctx context.Context, track *domain.Track) error
	DeleteTrack(ctx context.Context, id int64) error
}

type TrackService struct {
	Repo       TrackRepository
	Blobs      storage.Store
	Extractor  *metadata.Extractor
	Logger     *logger.Logger
	ScratchDir string
	now        func() time.Time
}

func NewTrackService(repo TrackRepository, blobs storage.Store, extractor *metadata.Extractor, scratchDir string, log *logger.Logger) *TrackService {
	return &TrackService{
		Repo:       repo,
		Blobs:      blobs,
		Extractor:  extractor,
		ScratchDir: scratchDir,
		Logger:     log.WithComponent("tracks"),
		now:        time.Now,
	}
}

// UploadInput is one uploaded audio file plus its form fields.
type UploadInput struct {
	Body     io.Reader
	Filename string
	Title    string
	UserID   int64
}

// Upload stores the blob, extracts its tags and records the track.
func (s *TrackService) Upload(ctx context.Context, in UploadInput) (*domain.Track, error) {
	title := strings.TrimSpace(in.Title)
	if in.Body == nil || title == "" || in.UserID <= 0 {
		return nil, fmt.Errorf("audio, title and user_id are required: %w", domain.ErrValidation)
	}

	name := storage.NewFilename(in.Filename, s.now())
	log := s.Logger.WithBlob(name)

	size, err := s.Blobs.Put(ctx, name, in.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	log.Debug("Blob stored", "bytes", size)

	md := s.extract(ctx, name, log)
	if md.Title == nil {
		md.Title = &title
	}

	track := &domain.Track{
		UserID:  in.UserID,
		Title:   *md.Title,
		FileURL: domain.FileURLFor(name),
		ID3:     md,
	}
	if err := s.Repo.CreateTrack(ctx, track); err != nil {
		if delErr := s.Blobs.Delete(context.WithoutCancel(ctx), name); delErr != nil {
			log.Error("Failed to remove orphan blob", "error", delErr)
		}
		return nil, fmt.Errorf("failed to record track: %w", err)
	}

	log.Info("Track uploaded", "track_id", track.ID, "title", track.Title, "bytes", size)
	return track, nil
}

// extract never fails: unreadable tags become an empty record.
func (s *TrackService) extract(ctx context.Context, name string, log *logger.Logger) domain.Metadata {
	if s.Extractor == nil {
		return domain.Metadata{}
	}

	obj, err := s.Blobs.Open(ctx, name)
	if err != nil {
		log.Warn("Failed to open blob for tag extraction", "error", err)
		return domain.Metadata{}
	}
	defer obj.Close()

	md, err := s.Extractor.Extract(ctx, obj)
	switch {
	case err == nil:
	case errors.Is(err, metadata.ErrNoDuration):
		log.Debug("Duration unavailable", "error", err)
	default:
		log.Warn("Tag extraction failed", "error", err)
		return domain.Metadata{}
	}
	return md
}

func (s *TrackService) Get(ctx context.Context, id int64) (*domain.Track, error) {
	return s.Repo.GetTrack(ctx, id)
}

// List returns all tracks, newest first.
func (s *TrackService) List(ctx context.Context) ([]domain.Track, error) {
	return s.Repo.ListTracks(ctx)
}

// Update applies an edit. Applying the same patch twice stores the same record.
func (s *TrackService) Update(ctx context.Context, id int64, patch domain.TrackPatch) (*domain.Track, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}

	track, err := s.Repo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}

	track.Apply(patch)
	if err := s.Repo.UpdateTrack(ctx, track); err != nil {
		return nil, err
	}

	s.Logger.WithTrack(track.ID, track.Title).Info("Track updated")
	return track, nil
}

// Delete removes the blob and then the row. The two steps are not atomic: a failed
// row delete leaves a row whose blob is already gone.
func (s *TrackService) Delete(ctx context.Context, id int64) error {
	track, err := s.Repo.GetTrack(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Blobs.Delete(ctx, track.StoredName()); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if err := s.Repo.DeleteTrack(ctx, id); err != nil {
		return err
	}

	s.Logger.WithTrack(track.ID, track.Title).Info("Track deleted")
	return nil
}

// Open returns the stored blob for streaming.
func (s *TrackService) Open(ctx context.Context, name string) (*storage.Object, error) {
	if !storage.ValidName(name) {
		return nil, storage.ErrNotFound
	}
	return s.Blobs.Open(ctx, name)
}

// Download is a request-scoped copy of a blob with the track's tags written in.
// Close removes the copy.
type Download struct {
	*os.File
	Filename    string
	ContentType string
	Size        int64
}

func (d *Download) Close() error {
	closeErr := d.File.Close()
	removeErr := os.Remove(d.File.Name())
	return errors.Join(closeErr, removeErr)
}

// PrepareDownload copies the named blob to a scratch file and rewrites its tags from
// the track row. The canonical blob is only read. Returns storage.ErrNotFound when
// the blob is missing and domain.ErrNotFound when no track points at it.
func (s *TrackService) PrepareDownload(ctx context.Context, name string) (*Download, error) {
	obj, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	track, err := s.Repo.GetTrackByFileURL(ctx, domain.FileURLFor(name))
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(name))
	scratch, err := os.CreateTemp(s.ScratchDir, "mixtape-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	d := &Download{
		File:        scratch,
		Filename:    tagging.DownloadName(track.TagTitle(), name, ext),
		ContentType: constants.ContentTypeForExt(ext),
	}
	ok := false
	defer func() {
		if !ok {
			d.Close() //nolint:errcheck // cleanup
		}
	}()

	if _, err := io.Copy(scratch, obj); err != nil {
		return nil, fmt.Errorf("failed to copy blob: %w", err)
	}

	if tagging.Supported(ext) {
		// the tag writer reopens the file by path
		if err := scratch.Sync(); err != nil {
			return nil, fmt.Errorf("failed to flush scratch file: %w", err)
		}
		if err := tagging.Rewrite(scratch.Name(), track); err != nil {
			return nil, fmt.Errorf("failed to rewrite tags: %w", err)
		}
	}

	// Rewrite may have replaced the file, so reopen it by name.
	if err := scratch.Close(); err != nil {
		return nil, fmt.Errorf("failed to close scratch file: %w", err)
	}
	reopened, err := os.Open(scratch.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to reopen scratch file: %w", err)
	}
	d.File = reopened

	info, err := reopened.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat scratch file: %w", err)
	}
	d.Size = info.Size()

	s.Logger.WithTrack(track.ID, track.Title).Debug("Download prepared", "bytes", d.Size)
	ok = true
	return d, nil
}
