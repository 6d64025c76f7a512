// Package audiotest builds small synthetic audio files for tests.
package audiotest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// Tags are the frames written into a fixture. Empty fields are skipped.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   string
	Genre  string
	Track  string
	// LengthMS becomes the ID3 TLEN frame.
	LengthMS string
}

// mpegFrame is one silent MPEG-1 Layer III frame header at 128kbps/44.1kHz.
var mpegFrame = func() []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
	return frame
}()

// Frames returns n fake MPEG frames.
func Frames(n int) []byte {
	return bytes.Repeat(mpegFrame, n)
}

// MP3 returns an ID3v2.4-tagged file followed by a few fake audio frames.
// A zero Tags value produces a file with no tag at all.
func MP3(t testing.TB, tags Tags) []byte {
	t.Helper()

	var buf bytes.Buffer
	if tags != (Tags{}) {
		tag := id3v2.NewEmptyTag()
		tag.SetVersion(4)
		tag.SetDefaultEncoding(id3v2.EncodingUTF8)
		if tags.Title != "" {
			tag.SetTitle(tags.Title)
		}
		if tags.Artist != "" {
			tag.SetArtist(tags.Artist)
		}
		if tags.Album != "" {
			tag.SetAlbum(tags.Album)
		}
		if tags.Year != "" {
			tag.SetYear(tags.Year)
		}
		if tags.Genre != "" {
			tag.SetGenre(tags.Genre)
		}
		if tags.Track != "" {
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, tags.Track)
		}
		if tags.LengthMS != "" {
			tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, tags.LengthMS)
		}
		if _, err := tag.WriteTo(&buf); err != nil {
			t.Fatalf("write id3 tag: %v", err)
		}
	}
	buf.Write(Frames(8))
	return buf.Bytes()
}

// FLAC returns a minimal FLAC stream: a zeroed STREAMINFO block, an optional
// Vorbis comment block, and some opaque frame bytes.
func FLAC(t testing.TB, tags Tags) []byte {
	t.Helper()

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: make([]byte, 34)},
		},
		Frames: bytes.Repeat([]byte{0xFF, 0xF8, 0x69, 0x08}, 64),
	}

	if tags != (Tags{}) {
		comment := flacvorbis.New()
		add := func(field, value string) {
			if value != "" {
				if err := comment.Add(field, value); err != nil {
					t.Fatalf("add vorbis comment: %v", err)
				}
			}
		}
		add(flacvorbis.FIELD_TITLE, tags.Title)
		add(flacvorbis.FIELD_ARTIST, tags.Artist)
		add(flacvorbis.FIELD_ALBUM, tags.Album)
		add(flacvorbis.FIELD_DATE, tags.Year)
		add(flacvorbis.FIELD_GENRE, tags.Genre)
		add(flacvorbis.FIELD_TRACKNUMBER, tags.Track)
		block := comment.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	return f.Marshal()
}

// WriteFile stores data under dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
