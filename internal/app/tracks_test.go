package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mixtape/internal/audiotest"
	"github.com/cesargomez89/mixtape/internal/domain"
	"github.com/cesargomez89/mixtape/internal/logger"
	"github.com/cesargomez89/mixtape/internal/metadata"
	"github.com/cesargomez89/mixtape/internal/storage"
	"github.com/cesargomez89/mixtape/internal/store"
)

type fixture struct {
	svc     *TrackService
	db      *store.DB
	blobs   *storage.MemoryStore
	scratch string
	userID  int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test_app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user, err := db.UpsertUser(ctx, "dj@example.com", "DJ")
	require.NoError(t, err)

	blobs := storage.NewMemoryStore()
	scratch := t.TempDir()
	svc := NewTrackService(db, blobs, metadata.NewExtractor(nil), scratch, logger.Discard())
	return &fixture{svc: svc, db: db, blobs: blobs, scratch: scratch, userID: user.ID}
}

func (f *fixture) upload(t *testing.T, data []byte, title string) *domain.Track {
	t.Helper()
	track, err := f.svc.Upload(context.Background(), UploadInput{
		Body:     bytes.NewReader(data),
		Filename: "My Song.mp3",
		Title:    title,
		UserID:   f.userID,
	})
	require.NoError(t, err)
	return track
}

func TestUploadUsesExtractedTitle(t *testing.T) {
	f := setup(t)
	data := audiotest.MP3(t, audiotest.Tags{Title: "Tagged Title", Artist: "Band", LengthMS: "180000"})

	track := f.upload(t, data, "Form Title")

	assert.NotZero(t, track.ID)
	assert.Equal(t, "Tagged Title", track.Title)
	require.NotNil(t, track.ID3.Title)
	assert.Equal(t, "Tagged Title", *track.ID3.Title)
	require.NotNil(t, track.ID3.Artist)
	assert.Equal(t, "Band", *track.ID3.Artist)
	assert.Equal(t, 180.0, *track.ID3.Duration)
	assert.True(t, strings.HasPrefix(track.FileURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(track.FileURL, "-My_Song.mp3"))

	stored, err := f.db.GetTrack(context.Background(), track.ID)
	require.NoError(t, err)
	assert.Equal(t, track.FileURL, stored.FileURL)
	assert.Equal(t, track.ID3, stored.ID3)

	obj, err := f.blobs.Open(context.Background(), track.StoredName())
	require.NoError(t, err)
	defer obj.Close()
	got, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestUploadFallsBackToCallerTitle(t *testing.T) {
	f := setup(t)

	track := f.upload(t, audiotest.MP3(t, audiotest.Tags{}), "  Form Title ")

	assert.Equal(t, "Form Title", track.Title)
	require.NotNil(t, track.ID3.Title)
	assert.Equal(t, "Form Title", *track.ID3.Title)
	assert.Nil(t, track.ID3.Artist)
}

func TestUploadSwallowsBrokenTags(t *testing.T) {
	f := setup(t)
	broken := append([]byte{'I', 'D', '3', 4, 0, 0, 0x7F, 0x7F, 0x7F, 0x7F}, audiotest.Frames(2)...)

	track := f.upload(t, broken, "Still Stored")

	assert.Equal(t, "Still Stored", track.Title)
	assert.Nil(t, track.ID3.Artist)
	assert.Len(t, f.blobs.Names(), 1)
}

func TestUploadValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   UploadInput
	}{
		{name: "no body", in: UploadInput{Title: "t", UserID: f.userID}},
		{name: "no title", in: UploadInput{Body: strings.NewReader("x"), Title: " ", UserID: f.userID}},
		{name: "no user", in: UploadInput{Body: strings.NewReader("x"), Title: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, f.blobs.Names(), "validation happens before any write")
}

func TestUploadDBFailureRemovesBlob(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Upload(context.Background(), UploadInput{
		Body:     bytes.NewReader(audiotest.MP3(t, audiotest.Tags{})),
		Filename: "a.mp3",
		Title:    "Nobody's",
		UserID:   f.userID + 100,
	})
	require.Error(t, err)
	assert.Empty(t, f.blobs.Names())

	tracks, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

type brokenStore struct{ storage.Store }

func (brokenStore) Put(context.Context, string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func TestUploadStorageFailure(t *testing.T) {
	f := setup(t)
	f.svc.Blobs = brokenStore{f.blobs}

	_, err := f.svc.Upload(context.Background(), UploadInput{
		Body: strings.NewReader("x"), Filename: "a.mp3", Title: "t", UserID: f.userID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	tracks, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tracks, "no row without a blob")
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	track := f.upload(t, audiotest.MP3(t, audiotest.Tags{Title: "T", Artist: "A", Genre: "G"}), "T")

	patch := domain.TrackPatch{
		Title: domain.Some("Renamed"),
		ID3:   domain.Some(domain.MetadataPatch{Artist: domain.Some("B"), Genre: domain.Null[string]()}),
	}
	updated, err := f.svc.Update(ctx, track.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	again, err := f.svc.Update(ctx, track.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, updated.ID3, again.ID3)

	stored, err := f.svc.Get(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", *stored.ID3.Artist)
	assert.Nil(t, stored.ID3.Genre)
	assert.Equal(t, "T", *stored.ID3.Title)

	_, err = f.svc.Update(ctx, track.ID, domain.TrackPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Update(ctx, 9999, patch)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	track := f.upload(t, audiotest.MP3(t, audiotest.Tags{}), "Gone Soon")

	require.NoError(t, f.svc.Delete(ctx, track.ID))
	assert.Empty(t, f.blobs.Names())
	_, err := f.svc.Get(ctx, track.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, track.ID), domain.ErrNotFound)
}

func TestDeleteMissingBlob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	track := f.upload(t, audiotest.MP3(t, audiotest.Tags{}), "Half There")
	require.NoError(t, f.blobs.Delete(ctx, track.StoredName()))

	require.NoError(t, f.svc.Delete(ctx, track.ID))
	_, err := f.svc.Get(ctx, track.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrepareDownload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	original := audiotest.MP3(t, audiotest.Tags{Title: "Upload", Artist: "Old", Genre: "Rock"})
	track := f.upload(t, original, "Upload")

	_, err := f.svc.Update(ctx, track.ID, domain.TrackPatch{
		Title: domain.Some("Edited: Title"),
		ID3:   domain.Some(domain.MetadataPatch{Artist: domain.Some("New"), Genre: domain.Null[string]()}),
	})
	require.NoError(t, err)

	d, err := f.svc.PrepareDownload(ctx, track.StoredName())
	require.NoError(t, err)

	assert.Equal(t, "Edited__Title.mp3", d.Filename)
	assert.Equal(t, "audio/mpeg", d.ContentType)
	assert.Positive(t, d.Size)

	m, err := tag.ReadFrom(d)
	require.NoError(t, err)
	assert.Equal(t, "Edited: Title", m.Title())
	assert.Equal(t, "New", m.Artist())
	assert.Equal(t, "", m.Genre())

	scratchPath := d.Name()
	assert.True(t, strings.HasPrefix(scratchPath, f.scratch))
	require.NoError(t, d.Close())
	_, err = os.Stat(scratchPath)
	assert.True(t, os.IsNotExist(err), "scratch copy is removed on close")

	obj, err := f.blobs.Open(ctx, track.StoredName())
	require.NoError(t, err)
	defer obj.Close()
	canonical, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, original, canonical, "stored blob is never rewritten")
}

func TestPrepareDownloadNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.PrepareDownload(ctx, "missing.mp3")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.svc.PrepareDownload(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.blobs.Put(ctx, "orphan.mp3", bytes.NewReader(audiotest.MP3(t, audiotest.Tags{})))
	require.NoError(t, err)
	_, err = f.svc.PrepareDownload(ctx, "orphan.mp3")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := os.ReadDir(f.scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrepareDownloadUnsupportedFormat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	track, err := f.svc.Upload(ctx, UploadInput{
		Body: strings.NewReader("OggS not really"), Filename: "clip.ogg", Title: "Clip", UserID: f.userID,
	})
	require.NoError(t, err)

	d, err := f.svc.PrepareDownload(ctx, track.StoredName())
	require.NoError(t, err)
	defer d.Close()

	body, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Equal(t, "OggS not really", string(body))
	assert.Equal(t, "Clip.ogg", d.Filename)
}
