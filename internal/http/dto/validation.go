package dto

import (
	"fmt"
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateRequired(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{Field: field, Message: "is required"}}
	}
	return nil
}

func validateID(field, value string) (int64, []ValidationError) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, []ValidationError{{Field: field, Message: "is required"}}
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, []ValidationError{{Field: field, Message: "must be a positive integer"}}
	}
	return id, nil
}

func validateYear(year *int) []ValidationError {
	var errs []ValidationError
	if year != nil {
		if *year < 0 || *year > 9999 {
			errs = append(errs, ValidationError{Field: "year", Message: "must be between 0 and 9999"})
		}
	}
	return errs
}

func validateTrackNumber(trackNumber *int) []ValidationError {
	var errs []ValidationError
	if trackNumber != nil {
		if *trackNumber < 0 || *trackNumber > 9999 {
			errs = append(errs, ValidationError{Field: "track", Message: "must be between 0 and 9999"})
		}
	}
	return errs
}

func validateDuration(duration *float64) []ValidationError {
	var errs []ValidationError
	if duration != nil && *duration < 0 {
		errs = append(errs, ValidationError{Field: "duration", Message: "must not be negative"})
	}
	return errs
}
