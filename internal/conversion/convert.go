// Package conversion turns the loosely-typed string arguments the MCP tool
// surface receives into validated, API-ready values. Every helper follows the
// same contract: a nil/blank optional input is not an error (it returns the
// zero value and a nil error), only malformed non-empty input produces an
// error, and the error message names the offending field with an example of
// the accepted format.
package conversion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	uuidPattern        = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	datePattern        = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	timePattern        = regexp.MustCompile(`^([0-9]{1,2}):([0-5][0-9])(?::[0-5][0-9])?$`)
	strictHHMMSS       = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}:[0-9]{2}$`)
	isoDatetimePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(?:Z|[+-][0-9]{2}:[0-9]{2})?$`)
	secondsPattern     = regexp.MustCompile(`^[0-9]+$`)
)

// IDString parses a numeric string into a positive integer ID. Blank input
// means the field was omitted and yields (nil, nil).
func IDString(s, field string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a numeric string. Example: '123'", field)
	}
	if v <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer. Example: '123'", field)
	}
	return &v, nil
}

// UUIDString validates an RFC 4122 UUID and normalizes it to lowercase.
func UUIDString(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	lower := strings.ToLower(s)
	if !uuidPattern.MatchString(lower) {
		return "", fmt.Errorf("%s must be a valid UUID string. Example: '123e4567-e89b-12d3-a456-426614174000'", field)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%s must be a valid UUID string. Example: '123e4567-e89b-12d3-a456-426614174000'", field)
	}
	return parsed.String(), nil
}

// DateString validates a YYYY-MM-DD date string. Only the shape is checked;
// calendar correctness is left to the API.
func DateString(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !datePattern.MatchString(s) {
		return "", fmt.Errorf("%s must be in YYYY-MM-DD format. Example: '2025-01-15'", field)
	}
	return s, nil
}

// TimeString validates an HH:MM:SS time string, including hour/minute/second
// ranges.
func TimeString(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !strictHHMMSS.MatchString(s) {
		return "", fmt.Errorf("%s must be in HH:MM:SS format. Example: '14:30:00'", field)
	}
	parts := strings.Split(s, ":")
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	sec, _ := strconv.Atoi(parts[2])
	if h > 23 || m > 59 || sec > 59 {
		return "", fmt.Errorf("%s contains invalid values. Hours (0-23), minutes (0-59), seconds (0-59). Example: '14:30:00'", field)
	}
	return s, nil
}

// APITimeFormat converts a time given as H:MM, HH:MM, HH:MM:SS, or an
// ISO-8601 datetime into the HH:MM form the API expects. Single-digit hours
// are zero-padded; seconds and any timezone designator are truncated.
func APITimeFormat(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if m := timePattern.FindStringSubmatch(s); m != nil {
		if hour, _ := strconv.Atoi(m[1]); hour <= 23 {
			return fmt.Sprintf("%02d:%s", hour, m[2]), nil
		}
	} else if isoDatetimePattern.MatchString(s) {
		if _, after, found := strings.Cut(s, "T"); found && strings.Contains(after, ":") {
			return after[:5], nil
		}
	}
	return "", fmt.Errorf("invalid %s format. Expected format: HH:MM, HH:MM:SS, or ISO datetime. Examples: '14:30', '14:30:00', '2025-01-15T14:30:00Z'", field)
}

// DurationFormat converts a duration given as H:MM, HH:MM, HH:MM:SS, or
// integer seconds into HH:MM. Single-digit hours are zero-padded; seconds
// are floored to whole minutes and the sub-minute remainder is dropped.
func DurationFormat(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if m := timePattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour > 23 {
			return "", fmt.Errorf("invalid %s format. Expected formats: HH:MM, HH:MM:SS, or seconds as integer. Examples: '01:30', '01:30:00', '5400'", field)
		}
		return fmt.Sprintf("%02d:%s", hour, m[2]), nil
	}
	if secondsPattern.MatchString(s) {
		seconds, err := strconv.Atoi(s)
		if err == nil {
			hours := seconds / 3600
			minutes := (seconds % 3600) / 60
			return fmt.Sprintf("%02d:%02d", hours, minutes), nil
		}
	}
	return "", fmt.Errorf("invalid %s format. Expected formats: HH:MM, HH:MM:SS, or seconds as integer. Examples: '01:30', '01:30:00', '5400'", field)
}

// LocationData normalizes a location argument. Objects pass through
// unchanged; a non-empty string address is wrapped as {"value": address}.
func LocationData(v any, field string) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	switch loc := v.(type) {
	case map[string]any:
		return loc, nil
	case string:
		if trimmed := strings.TrimSpace(loc); trimmed != "" {
			return map[string]any{"value": trimmed}, nil
		}
	}
	return nil, fmt.Errorf("invalid %s format. Expected formats: string address or location object. Example: '123 Main St, City' or {\"value\": \"123 Main St, City\"}", field)
}

// Participants validates a participants list: every element must be an
// object carrying a positive-integer person_id. Numeric strings are
// converted to integers.
func Participants(v any, field string) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list of participant objects with person_id. Example: [{\"person_id\": 123, \"primary_flag\": true}]", field)
	}
	formatted := make([]map[string]any, 0, len(list))
	for i, item := range list {
		participant, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("each participant must be an object. Invalid participant at position %d", i)
		}
		raw, ok := participant["person_id"]
		if !ok {
			return nil, fmt.Errorf("each participant must have a 'person_id' field. Missing in participant at position %d", i)
		}
		out := make(map[string]any, len(participant))
		for k, val := range participant {
			out[k] = val
		}
		switch id := raw.(type) {
		case string:
			personID, err := strconv.Atoi(id)
			if err != nil {
				return nil, fmt.Errorf("person_id must be a numeric value in participant at position %d", i)
			}
			if personID <= 0 {
				return nil, fmt.Errorf("person_id must be a positive integer in participant at position %d", i)
			}
			out["person_id"] = personID
		case float64:
			// JSON numbers decode as float64.
			if id <= 0 || id != float64(int(id)) {
				return nil, fmt.Errorf("person_id must be a positive integer in participant at position %d", i)
			}
			out["person_id"] = int(id)
		case int:
			if id <= 0 {
				return nil, fmt.Errorf("person_id must be a positive integer in participant at position %d", i)
			}
			out["person_id"] = id
		default:
			return nil, fmt.Errorf("person_id must be a positive integer in participant at position %d", i)
		}
		formatted = append(formatted, out)
	}
	return formatted, nil
}

// SanitizeString trims surrounding whitespace so blank optional arguments
// read as absent.
func SanitizeString(s string) string {
	return strings.TrimSpace(s)
}

// SplitList converts a comma-separated string into a slice of trimmed,
// non-empty items. Blank input yields nil.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
