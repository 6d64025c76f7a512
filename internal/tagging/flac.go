package tagging

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

var managedVorbisFields = []string{
	flacvorbis.FIELD_TITLE,
	flacvorbis.FIELD_ARTIST,
	flacvorbis.FIELD_ALBUM,
	flacvorbis.FIELD_DATE,
	flacvorbis.FIELD_GENRE,
	flacvorbis.FIELD_TRACKNUMBER,
}

func rewriteFLAC(filePath string, f Fields) error {
	file, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var comment *flacvorbis.MetaDataBlockVorbisComment
	index := -1
	for i, block := range file.Meta {
		if block.Type == flac.VorbisComment {
			comment, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return fmt.Errorf("failed to parse vorbis comment: %w", err)
			}
			index = i
			break
		}
	}
	if comment == nil {
		comment = flacvorbis.New()
	}

	comment.Comments = keepUnmanaged(comment.Comments)

	values := map[string]string{
		flacvorbis.FIELD_TITLE:       f.Title,
		flacvorbis.FIELD_ARTIST:      f.Artist,
		flacvorbis.FIELD_ALBUM:       f.Album,
		flacvorbis.FIELD_DATE:        f.Year,
		flacvorbis.FIELD_GENRE:       f.Genre,
		flacvorbis.FIELD_TRACKNUMBER: f.Track,
	}
	for _, field := range managedVorbisFields {
		if v := values[field]; v != "" {
			if err := comment.Add(field, v); err != nil {
				return fmt.Errorf("failed to add %s: %w", field, err)
			}
		}
	}

	block := comment.Marshal()
	if index >= 0 {
		file.Meta[index] = &block
	} else {
		file.Meta = append(file.Meta, &block)
	}

	if err := file.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

// keepUnmanaged drops the comments rewriteFLAC is about to replace.
func keepUnmanaged(comments []string) []string {
	kept := make([]string, 0, len(comments))
	for _, c := range comments {
		key, _, _ := strings.Cut(c, "=")
		managed := false
		for _, field := range managedVorbisFields {
			if strings.EqualFold(key, field) {
				managed = true
				break
			}
		}
		if !managed {
			kept = append(kept, c)
		}
	}
	return kept
}
