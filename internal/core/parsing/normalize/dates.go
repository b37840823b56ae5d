package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

var (
	canonicalDate = regexp.MustCompile(`^\d{4}-\d{2}$`)
	isoDay        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthYear     = regexp.MustCompile(`^([a-z]{3,9})\.?\s+(\d{4})$`)
	slashDate     = regexp.MustCompile(`^(\d{1,2})/(\d{2,4})$`)
	bareYear      = regexp.MustCompile(`^\d{4}$`)
	presentWord   = regexp.MustCompile(`^(present|current|ongoing)$`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParseDate converts a free-form date to "YYYY-MM", "Present" or "".
// Formats are tried in a fixed order: YYYY-MM, YYYY-MM-DD, "Month YYYY" with
// the month full or abbreviated (optionally with a dot),
// MM/YYYY or MM/YY (20xx), YYYY, present|current|ongoing.
func ParseDate(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}

	switch {
	case canonicalDate.MatchString(s):
		return s
	case isoDay.MatchString(s):
		return s[:7]
	}

	if m := monthYear.FindStringSubmatch(s); m != nil {
		if month, ok := monthNumber(m[1]); ok {
			return fmt.Sprintf("%s-%02d", m[2], month)
		}
		return ""
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year := m[2]
		if len(year) == 2 {
			year = "20" + year
		}
		return fmt.Sprintf("%s-%02d", year, month)
	}

	if bareYear.MatchString(s) {
		return s + "-01"
	}
	if presentWord.MatchString(s) {
		return domain.DatePresent
	}
	return ""
}

// monthNumber accepts a full month name or any prefix of one at least three
// letters long, so "sep", "sept" and "september" all resolve to 9.
func monthNumber(word string) (int, bool) {
	n, ok := monthNumbers[word[:3]]
	if !ok || !strings.HasPrefix(strings.ToLower(monthNames[n-1]), word) {
		return 0, false
	}
	return n, true
}

// IsValidDate accepts only the canonical YYYY-MM shape or "Present".
func IsValidDate(d string) bool {
	return d == domain.DatePresent || canonicalDate.MatchString(d)
}

// FormatDate renders a canonical date as "January 2020".
func FormatDate(d string) string {
	if d == "" || d == domain.DatePresent {
		return d
	}
	year, month, ok := splitDate(d)
	if !ok || month < 1 || month > 12 {
		return d
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// DurationMonths counts whole months between two canonical dates. An end of
// "Present" is measured against now. ok is false when either side is unusable.
func DurationMonths(start, end string, now time.Time) (months int, ok bool) {
	sy, sm, ok := splitDate(start)
	if !ok {
		return 0, false
	}
	var ey, em int
	if end == domain.DatePresent {
		ey, em = now.Year(), int(now.Month())
	} else if ey, em, ok = splitDate(end); !ok {
		return 0, false
	}
	months = (ey-sy)*12 + (em - sm)
	if months < 0 {
		return 0, false
	}
	return months, true
}

// IsFutureDate reports whether a canonical date lies after now's month.
func IsFutureDate(d string, now time.Time) bool {
	year, month, ok := splitDate(d)
	if !ok {
		return false
	}
	if year != now.Year() {
		return year > now.Year()
	}
	return month > int(now.Month())
}

func splitDate(d string) (year, month int, ok bool) {
	if !canonicalDate.MatchString(d) {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(d[:4])
	month, _ = strconv.Atoi(d[5:])
	return year, month, true
}
