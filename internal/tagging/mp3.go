package tagging

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// Frames owned by rewriteMP3. TYER is the v2.3 year frame and is dropped on upgrade.
const (
	frameTitle  = "TIT2"
	frameArtist = "TPE1"
	frameAlbum  = "TALB"
	frameYear   = "TDRC"
	frameYearV3 = "TYER"
	frameGenre  = "TCON"
	frameTrack  = "TRCK"
)

func rewriteMP3(filePath string, f Fields) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, id := range []string{frameTitle, frameArtist, frameAlbum, frameYear, frameYearV3, frameGenre, frameTrack} {
		tag.DeleteFrames(id)
	}

	if f.Title != "" {
		tag.SetTitle(f.Title)
	}
	if f.Artist != "" {
		tag.SetArtist(f.Artist)
	}
	if f.Album != "" {
		tag.SetAlbum(f.Album)
	}
	if f.Year != "" {
		tag.SetYear(f.Year)
	}
	if f.Genre != "" {
		tag.SetGenre(f.Genre)
	}
	if f.Track != "" {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), f.Track)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return nil
}
