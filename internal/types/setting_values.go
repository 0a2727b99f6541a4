package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Consumed settings keys. Everything else in the settings table is opaque to
// this service.
const (
	SettingKeyUseLegacyReviewSets = "use_legacy_review_sets"
	SettingKeyReviewTiming        = "review_timing"
	SettingKeySubjects            = "subjects"
)

// ReviewTiming is one entry of the legacy review_timing payload: a subject
// plus the day offsets it should be reviewed at.
type ReviewTiming struct {
	SubjectName string `json:"subject_name"`
	ReviewDays  []int  `json:"review_days"`
}

// SubjectPref is one entry of the subjects payload controlling which subjects
// appear in aggregated output, and in what order.
type SubjectPref struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// ParseBoolFlag reads a bool-like settings value. JSON booleans and the usual
// string spellings are accepted; anything else returns the supplied default.
func ParseBoolFlag(value string, defaultVal bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultVal
	}
	var b bool
	if err := json.Unmarshal([]byte(trimmed), &b); err == nil {
		return b
	}
	switch strings.ToLower(strings.Trim(trimmed, `"`)) {
	case "true", "1", "yes", "y", "t":
		return true
	case "false", "0", "no", "n", "f":
		return false
	default:
		return defaultVal
	}
}

// ParseReviewTimings parses the legacy review_timing array. Entries that are
// not objects and day offsets that are not integers are skipped, not fatal;
// only a payload that is not a JSON array at all is an error.
func ParseReviewTimings(value string) ([]ReviewTiming, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("review_timing is not a JSON array: %w", err)
	}
	out := make([]ReviewTiming, 0, len(raw))
	for _, entry := range raw {
		var obj struct {
			SubjectName string            `json:"subject_name"`
			ReviewDays  []json.RawMessage `json:"review_days"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		name := strings.TrimSpace(obj.SubjectName)
		if name == "" {
			continue
		}
		days := make([]int, 0, len(obj.ReviewDays))
		for _, d := range obj.ReviewDays {
			var n int
			if err := json.Unmarshal(d, &n); err != nil {
				continue
			}
			days = append(days, n)
		}
		out = append(out, ReviewTiming{SubjectName: name, ReviewDays: days})
	}
	return out, nil
}

// ParseSubjectPrefs parses the subjects visibility/order payload, preserving
// the listed order.
func ParseSubjectPrefs(value string) ([]SubjectPref, error) {
	var prefs []SubjectPref
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, fmt.Errorf("subjects is not a JSON array: %w", err)
	}
	out := make([]SubjectPref, 0, len(prefs))
	for _, p := range prefs {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// RenameReviewTimingSubject rewrites subject_name occurrences inside a raw
// review_timing payload, re-serializing it. The payload is mutated only at
// the subject_name keys so unknown fields survive the round trip.
func RenameReviewTimingSubject(value, oldName, newName string) (string, bool, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return "", false, fmt.Errorf("review_timing is not a JSON array of objects: %w", err)
	}
	changed := false
	for _, obj := range raw {
		nameRaw, ok := obj["subject_name"]
		if !ok {
			continue
		}
		var name string
		if err := json.Unmarshal(nameRaw, &name); err != nil {
			continue
		}
		if name != oldName {
			continue
		}
		encoded, err := json.Marshal(newName)
		if err != nil {
			return "", false, err
		}
		obj["subject_name"] = encoded
		changed = true
	}
	if !changed {
		return value, false, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return "", false, err
	}
	return string(encoded), true, nil
}
