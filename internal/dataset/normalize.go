package dataset

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Cell-level parse failures. They are reported to the loader, which logs
// them and keeps the row with an empty value for the field.
var (
	ErrMalformedList     = errors.New("malformed quoted list")
	ErrMalformedDuration = errors.New("malformed duration")
)

var (
	quotedItem = regexp.MustCompile(`"([^"]*)"`)

	// ISO-8601 durations as found in the recipe dataset: PT30M, PT1H5M, P1DT2H.
	isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

	// Human readable values: "15 mins", "1 hr", "1 hour 30 minutes".
	humanDuration = regexp.MustCompile(`(?i)^(?:(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hour|hours))?\s*(?:(\d+(?:\.\d+)?)\s*(?:m|min|mins|minute|minutes))?$`)
)

// isMissing reports whether a raw cell holds one of the null spellings that
// pandas, R, and spreadsheet exports produce.
func isMissing(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "na", "nan", "none", "null", "character(0)":
		return true
	}
	return false
}

// ParseQuotedList extracts the double-quoted items of a pseudo-list cell such
// as `c("a", "b")` or `["a", "b"]`. Malformed input yields an empty, non-nil
// slice together with an ErrMalformedList error.
func ParseQuotedList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return []string{}, nil
	}

	raw = strings.ReplaceAll(raw, `\"`, `'`)
	if strings.Count(raw, `"`)%2 != 0 {
		return []string{}, fmt.Errorf("%w: unterminated quote", ErrMalformedList)
	}

	matches := quotedItem.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return []string{}, fmt.Errorf("%w: no quoted items", ErrMalformedList)
	}

	items := make([]string, 0, len(matches))
	for _, m := range matches {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

// ParseDuration renders a duration cell as whole minutes, e.g. "PT1H5M" or
// "1 hr 5 mins" -> "65 min". Anything else yields "" and ErrMalformedDuration.
func ParseDuration(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return "", nil
	}
	if m := humanDuration.FindStringSubmatch(raw); m != nil && (m[1] != "" || m[2] != "") {
		var minutes float64
		for i, scale := range []float64{60, 1} {
			if m[i+1] == "" {
				continue
			}
			n, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return "", fmt.Errorf("%w: %q", ErrMalformedDuration, raw)
			}
			minutes += n * scale
		}
		return formatMinutes(minutes), nil
	}

	m := isoDuration.FindStringSubmatch(strings.ToUpper(raw))
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "") {
		return "", fmt.Errorf("%w: %q", ErrMalformedDuration, raw)
	}

	var minutes float64
	for i, scale := range []float64{24 * 60, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrMalformedDuration, raw)
		}
		minutes += float64(n) * scale
	}
	if m[4] != "" {
		secs, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrMalformedDuration, raw)
		}
		minutes += secs / 60
	}

	return formatMinutes(minutes), nil
}

func formatMinutes(minutes float64) string {
	return fmt.Sprintf("%d min", int(math.Round(minutes)))
}

// ParseNutrient parses a numeric cell. ok is false for missing or non-finite
// values.
func ParseNutrient(raw string) (value float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
