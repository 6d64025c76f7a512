package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the normalized tag record kept for a track. Every field is optional;
// a nil pointer serializes as JSON null.
type Metadata struct {
	Artist   *string  `json:"artist"`
	Album    *string  `json:"album"`
	Year     *int     `json:"year"`
	Genre    *string  `json:"genre"`
	Duration *float64 `json:"duration"`
	Track    *int     `json:"track"`
	Title    *string  `json:"title"`
}

func (m Metadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *Metadata) Scan(value interface{}) error {
	*m = Metadata{}
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, m)
}

// Merge returns a copy of m with every field present in p overwritten.
// Fields absent from p are kept; fields present as null are cleared.
func (m Metadata) Merge(p MetadataPatch) Metadata {
	out := m
	if p.Artist.Set {
		out.Artist = p.Artist.Value
	}
	if p.Album.Set {
		out.Album = p.Album.Value
	}
	if p.Year.Set {
		out.Year = p.Year.Value
	}
	if p.Genre.Set {
		out.Genre = p.Genre.Value
	}
	if p.Duration.Set {
		out.Duration = p.Duration.Value
	}
	if p.Track.Set {
		out.Track = p.Track.Value
	}
	if p.Title.Set {
		out.Title = p.Title.Value
	}
	return out
}

// MetadataPatch is a partial Metadata as sent by an edit request.
type MetadataPatch struct {
	Artist   Optional[string]  `json:"artist"`
	Album    Optional[string]  `json:"album"`
	Year     Optional[int]     `json:"year"`
	Genre    Optional[string]  `json:"genre"`
	Duration Optional[float64] `json:"duration"`
	Track    Optional[int]     `json:"track"`
	Title    Optional[string]  `json:"title"`
}

// Empty reports whether the patch carries no field at all.
func (p MetadataPatch) Empty() bool {
	return !p.Artist.Set && !p.Album.Set && !p.Year.Set && !p.Genre.Set &&
		!p.Duration.Set && !p.Track.Set && !p.Title.Set
}

// Optional distinguishes an absent JSON key (Set == false) from an explicit null
// (Set == true, Value == nil).
type Optional[T any] struct {
	Value *T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: &v, Set: true}
}

// Null returns a present Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var v T
	err := json.Unmarshal(data, &v)
	if err == nil {
		o.Value = &v
		return nil
	}

	if !isNumericTarget(&v) {
		return err
	}
	present, err := decodeNumericString(data, &v)
	if err != nil {
		return err
	}
	if !present {
		// blank string clears a numeric field
		return nil
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func isNumericTarget(dst interface{}) bool {
	switch dst.(type) {
	case *int, *float64:
		return true
	}
	return false
}

// decodeNumericString accepts "12" for int and float fields. present is false when
// the string is blank.
func decodeNumericString(data []byte, dst interface{}) (bool, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return false, fmt.Errorf("%s is not a number: %w", string(data), ErrValidation)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}

	switch d := dst.(type) {
	case *int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return false, fmt.Errorf("%q is not an integer: %w", s, ErrValidation)
		}
		*d = n
	case *float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false, fmt.Errorf("%q is not a number: %w", s, ErrValidation)
		}
		*d = f
	}
	return true, nil
}
