package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	disk, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return map[string]Store{
		"disk":   disk,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			payload := []byte("ID3 fake audio payload 0123456789")

			n, err := s.Put(ctx, "1-abc-song.mp3", bytes.NewReader(payload))
			require.NoError(t, err)
			assert.Equal(t, int64(len(payload)), n)

			obj, err := s.Open(ctx, "1-abc-song.mp3")
			require.NoError(t, err)
			assert.Equal(t, int64(len(payload)), obj.Size)

			_, err = obj.Seek(4, io.SeekStart)
			require.NoError(t, err)
			part := make([]byte, 4)
			_, err = io.ReadFull(obj, part)
			require.NoError(t, err)
			assert.Equal(t, "fake", string(part))
			require.NoError(t, obj.Close())

			require.NoError(t, s.Delete(ctx, "1-abc-song.mp3"))
			_, err = s.Open(ctx, "1-abc-song.mp3")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting again is fine
			assert.NoError(t, s.Delete(ctx, "1-abc-song.mp3"))
		})
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Put(ctx, "../escape.mp3", strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrInvalidName)

			_, err = s.Open(ctx, "../escape.mp3")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDiskStoreFailedPutLeavesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewDiskStore(dir)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "1-abc-song.mp3", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStoreCancelledPut(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "1-abc-song.mp3", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreNames(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.Put(ctx, "b.mp3", strings.NewReader("b"))
	_, _ = s.Put(ctx, "a.mp3", strings.NewReader("a"))
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, s.Names())
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"1-abc-song.mp3", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b.mp3", false},
		{`a\b.mp3`, false},
		{"../x.mp3", false},
		{"x..mp3", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Name.mp3", "Normal_Name.mp3"},
		{"AC/DC - Thunder.mp3", "DC_-_Thunder.mp3"},
		{`C:\music\song.mp3`, "song.mp3"},
		{"Trailing Dot.", "Trailing_Dot"},
		{"..hidden..mp3", "hidden.mp3"},
		{"Café Tacvba.mp3", "Caf__Tacvba.mp3"},
		{"", "audio"},
		{"...", "audio"},
	}

	for _, tt := range tests {
		got := Sanitize(tt.input)
		if got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
		if !ValidName(got) {
			t.Errorf("Sanitize(%q) = %q is not a valid blob name", tt.input, got)
		}
	}
}

func TestSanitizeLongName(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 300) + ".mp3")
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, ".mp3"))
}

func TestNewFilename(t *testing.T) {
	now := time.UnixMilli(1717171717171)
	a := NewFilename("My Song.mp3", now)
	b := NewFilename("My Song.mp3", now)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "1717171717171-"))
	assert.True(t, strings.HasSuffix(a, "-My_Song.mp3"))
	assert.True(t, ValidName(a))
}
