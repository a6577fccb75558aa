package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns that look like phone numbers to the broad regex but are almost
// always something else: dates, year ranges, decimal figures, coordinates.
var (
	dateDMYPattern   = regexp.MustCompile(`^\d{1,2}[-/. ]\d{1,2}[-/. ]\d{2,4}$`)
	dateYMDPattern   = regexp.MustCompile(`^\d{4}[-/. ]\d{1,2}[-/. ]\d{1,2}$`)
	yearRangePattern = regexp.MustCompile(`^\d{4}\s?-\s?\d{4}$`)
	decimalPattern   = regexp.MustCompile(`^\d+\.\d+$`)
	coordPattern     = regexp.MustCompile(`^\d+(\.\d+)?\s+\d+\.\d+$`)
	extMarkerPattern = regexp.MustCompile(`extn?\.?|ext|x`)
	segmentSplit     = regexp.MustCompile(`[\s\-]+`)
)

// Unix-timestamp window used to reject bare 10-digit numbers that are far
// more likely to be epoch seconds than phone numbers (2000..2035).
const (
	timestampLow  = 946684800
	timestampHigh = 2051222400
)

// PlausiblePhone reports whether a regex-matched candidate string is likely a
// real phone number. It applies a digit-count window plus staged rejection of
// dates, constant-digit runs, decimal figures, unformatted IDs, and
// ID-shaped digit segments.
func PlausiblePhone(candidate string, minDigits, maxDigits int) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || len(candidate) < minDigits-4 {
		return false
	}

	if dateDMYPattern.MatchString(candidate) ||
		dateYMDPattern.MatchString(candidate) ||
		yearRangePattern.MatchString(candidate) ||
		coordPattern.MatchString(candidate) {
		return false
	}
	if decimalPattern.MatchString(candidate) && !strings.ContainsAny(candidate, "-()") {
		return false
	}

	digits := digitsOnly(candidate)
	if len(digits) < minDigits || len(digits) > maxDigits {
		return false
	}
	if sameDigit(digits) && len(digits) >= 7 {
		return false
	}
	if strings.HasPrefix(digits, "000000") && len(digits) <= 8 {
		return false
	}

	// Unformatted digit runs: only the common national lengths pass, and
	// 10-digit runs in the epoch-seconds window are rejected as timestamps.
	plain := strings.ReplaceAll(candidate, ".", "")
	if isAllDigits(plain) && !strings.HasPrefix(candidate, "+") {
		if len(digits) == 10 {
			if v, err := strconv.ParseInt(digits, 10, 64); err == nil &&
				v >= timestampLow && v <= timestampHigh {
				return false
			}
		}
		if len(digits) != 7 && len(digits) != 10 && len(digits) != 11 {
			return false
		}
	}

	if hasNonPhoneLetters(candidate) {
		return false
	}

	return !looksLikeIDSegments(candidate, len(digits))
}

// looksLikeIDSegments rejects dash/space-separated digit groups shaped like
// order numbers or record IDs rather than dialable numbers.
func looksLikeIDSegments(candidate string, numDigits int) bool {
	stripped := strings.NewReplacer("(", "", ")", "", ".", "", "+", "").Replace(candidate)
	var segments []string
	for _, seg := range segmentSplit.Split(stripped, -1) {
		if seg != "" && isAllDigits(seg) {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return true
	}
	if len(segments) < 2 {
		return false
	}

	// Leading lone zero followed by short groups: itemized list numbering.
	if segments[0] == "0" && len(segments) >= 3 {
		short := true
		for _, seg := range segments[1:] {
			if len(seg) > 4 {
				short = false
				break
			}
		}
		if short {
			return true
		}
	}

	// Two short unparenthesized groups with few digits overall, e.g. "2024 12".
	if len(segments) == 2 && !strings.ContainsAny(candidate, "()") && numDigits <= 8 {
		l1, l2 := len(segments[0]), len(segments[1])
		if (l1 >= 3 && l1 <= 4 && l2 <= 3) || (l1 <= 3 && l2 >= 3 && l2 <= 4) {
			if strings.Count(candidate, ".") <= 1 {
				return true
			}
		}
	}

	// One long group plus one short group joined by a single dash: SKU shape.
	if len(segments) == 2 && strings.Count(candidate, "-") == 1 &&
		!strings.ContainsAny(candidate, " ()+.") && numDigits >= 8 {
		l1, l2 := len(segments[0]), len(segments[1])
		if (l1 >= 5 && l2 <= 4) || (l2 >= 5 && l1 <= 4) {
			return true
		}
	}

	// Long-short-tiny triple, e.g. "500813-1713-47".
	if len(segments) == 3 && strings.Count(candidate, "-") == 2 {
		if len(segments[0]) >= 5 && len(segments[1]) <= 4 && len(segments[2]) <= 2 {
			return true
		}
	}

	return false
}

// hasNonPhoneLetters reports whether letters other than extension markers
// remain after stripping digits and phone punctuation.
func hasNonPhoneLetters(candidate string) bool {
	var sb strings.Builder
	for _, r := range strings.ToLower(candidate) {
		if (r >= '0' && r <= '9') || strings.ContainsRune(" -().+", r) {
			continue
		}
		sb.WriteRune(r)
	}
	rest := extMarkerPattern.ReplaceAllString(sb.String(), "")
	return strings.TrimSpace(rest) != ""
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sameDigit(digits string) bool {
	if digits == "" {
		return false
	}
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
