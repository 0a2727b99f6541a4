package types

import (
	"strings"
	"testing"
)

func TestParseBoolFlag(t *testing.T) {
	cases := []struct {
		value      string
		defaultVal bool
		want       bool
	}{
		{"true", false, true},
		{"false", true, false},
		{`"true"`, false, true},
		{`"False"`, true, false},
		{"1", false, true},
		{"0", true, false},
		{"yes", false, true},
		{"no", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
		{"garbage", false, false},
	}
	for _, tc := range cases {
		if got := ParseBoolFlag(tc.value, tc.defaultVal); got != tc.want {
			t.Fatalf("ParseBoolFlag(%q, %v) = %v, want %v", tc.value, tc.defaultVal, got, tc.want)
		}
	}
}

func TestParseReviewTimings(t *testing.T) {
	timings, err := ParseReviewTimings(`[
		{"subject_name":"簿記","review_days":[1,3,7]},
		{"subject_name":"","review_days":[1]},
		{"subject_name":"租税法","review_days":[2,"x",5]},
		"not an object"
	]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(timings) != 2 {
		t.Fatalf("parsed %d timings, want 2", len(timings))
	}
	if timings[0].SubjectName != "簿記" || len(timings[0].ReviewDays) != 3 {
		t.Fatalf("first timing = %+v", timings[0])
	}
	if timings[1].SubjectName != "租税法" || len(timings[1].ReviewDays) != 2 {
		t.Fatalf("second timing should drop the non-integer day, got %+v", timings[1])
	}

	if _, err := ParseReviewTimings(`{"not":"array"}`); err == nil {
		t.Fatal("non-array payload should error")
	}
}

func TestParseSubjectPrefs(t *testing.T) {
	prefs, err := ParseSubjectPrefs(`[{"name":"簿記","visible":true},{"name":"  ","visible":true},{"name":"監査論","visible":false}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("parsed %d prefs, want 2", len(prefs))
	}
	if prefs[0].Name != "簿記" || !prefs[0].Visible {
		t.Fatalf("first pref = %+v", prefs[0])
	}
	if prefs[1].Name != "監査論" || prefs[1].Visible {
		t.Fatalf("second pref = %+v", prefs[1])
	}
}

func TestRenameReviewTimingSubject(t *testing.T) {
	value := `[{"subject_name":"簿記","review_days":[1,3],"color":"#ff0000"},{"subject_name":"監査論","review_days":[7]}]`

	rewritten, changed, err := RenameReviewTimingSubject(value, "簿記", "簿記論")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !changed {
		t.Fatal("rename reported no change")
	}
	timings, err := ParseReviewTimings(rewritten)
	if err != nil {
		t.Fatalf("parse rewritten: %v", err)
	}
	found := false
	for _, timing := range timings {
		if timing.SubjectName == "簿記論" {
			found = true
		}
		if timing.SubjectName == "簿記" {
			t.Fatal("old name survived the rename")
		}
	}
	if !found {
		t.Fatalf("renamed subject missing from %v", timings)
	}

	// Unknown fields survive the rewrite.
	if !strings.Contains(rewritten, `"color"`) {
		t.Fatalf("unknown field dropped: %s", rewritten)
	}

	same, changed, err := RenameReviewTimingSubject(value, "存在しない", "x")
	if err != nil {
		t.Fatalf("no-op rename: %v", err)
	}
	if changed || same != value {
		t.Fatal("no-op rename should return the input unchanged")
	}

	if _, _, err := RenameReviewTimingSubject("broken{", "a", "b"); err == nil {
		t.Fatal("malformed payload should error")
	}
}
