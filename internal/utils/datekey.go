package utils

import (
	"fmt"
	"time"
)

// Date keys are yyyy-MM-dd strings in the client's local calendar. They are
// stored and range-queried as opaque strings (lexicographic order equals date
// order), and only parsed when calendar arithmetic is needed.
const DateKeyLayout = "2006-01-02"

func ParseDateKey(dateKey string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, dateKey, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date_key %q: %w", dateKey, err)
	}
	return t, nil
}

func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// AddDaysToKey shifts a date key by n calendar days.
func AddDaysToKey(dateKey string, n int) (string, error) {
	t, err := ParseDateKey(dateKey)
	if err != nil {
		return "", err
	}
	return FormatDateKey(t.AddDate(0, 0, n)), nil
}

// WeekRangeKeys returns the half-open [monday, nextMonday) key range of the
// ISO week containing dateKey. Weeks start on Monday.
func WeekRangeKeys(dateKey string) (string, string, error) {
	t, err := ParseDateKey(dateKey)
	if err != nil {
		return "", "", err
	}
	// time.Weekday: Sunday == 0, so Sunday sits 6 days past Monday.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return FormatDateKey(monday), FormatDateKey(monday.AddDate(0, 0, 7)), nil
}

// WeekDayKeys returns the seven Mon..Sun keys of the week containing dateKey.
func WeekDayKeys(dateKey string) ([]string, error) {
	startKey, _, err := WeekRangeKeys(dateKey)
	if err != nil {
		return nil, err
	}
	start, err := ParseDateKey(startKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		keys = append(keys, FormatDateKey(start.AddDate(0, 0, i)))
	}
	return keys, nil
}

// WindowKeys returns the n consecutive day keys ending at endKey, ascending.
func WindowKeys(endKey string, n int) ([]string, error) {
	if n < 1 {
		n = 1
	}
	end, err := ParseDateKey(endKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, FormatDateKey(end.AddDate(0, 0, -i)))
	}
	return keys, nil
}

// TodayKey computes "today" in a fixed UTC offset. The ledger's date_key is
// defined by the client's local calendar day, so this is only a display
// fallback for callers that omit date_key.
func TodayKey(offsetHours int) string {
	loc := time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
	return time.Now().In(loc).Format(DateKeyLayout)
}
