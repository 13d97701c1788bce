package inspection

import (
	"fmt"
	"time"
)

const (
	counterDigits = 4
	MaxCounter    = 9999
)

// NumberPrefix builds "<station><fiscalYY><MM><WW>-<DD>". The year is fiscal, month and
// day are calendar values of date in its own location. Callers that persist the record
// pass the UTC date so the number agrees with the stored inspection date.
func NumberPrefix(station string, fiscalYear int, date time.Time, workWeek int) string {
	return fmt.Sprintf("%s%02d%02d%02d-%02d", station, fiscalYear%100, int(date.Month()), workWeek, date.Day())
}

func FormatNumber(prefix string, counter int) string {
	return fmt.Sprintf("%s%0*d", prefix, counterDigits, counter)
}

// ParseCounter reads the trailing four digits of an inspection number.
func ParseCounter(number string) (int, bool) {
	if len(number) < counterDigits {
		return 0, false
	}

	value := 0
	for _, ch := range number[len(number)-counterDigits:] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		value = value*10 + int(ch-'0')
	}
	return value, true
}

// NextCounter returns max(parsed counters)+1; unparseable numbers are skipped.
func NextCounter(numbers []string) int {
	maxCounter := 0
	for _, number := range numbers {
		if counter, ok := ParseCounter(number); ok && counter > maxCounter {
			maxCounter = counter
		}
	}
	return maxCounter + 1
}

// FallbackNumber uses the last four digits of the wall clock (Unix millis) as counter.
// Not unique; only for availability when the store cannot be read.
func FallbackNumber(prefix string, now time.Time) string {
	return FormatNumber(prefix, int(now.UnixMilli()%10000))
}
