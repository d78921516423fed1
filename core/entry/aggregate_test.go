package entry

import "testing"

func entered(id string, percent int) ScoreDraft {
	correct := percent // exact values irrelevant to the summary
	return ScoreDraft{StudentID: id, Correct: &correct, Total: 100, Percent: percent}
}

func TestSummarizeExcludesNotEnteredRows(t *testing.T) {
	drafts := []ScoreDraft{
		entered("s1", 60),
		entered("s2", 80),
		entered("s3", 100),
		{StudentID: "s4", Total: 20}, // not entered
		{StudentID: "s5", RawText: "abc"},
	}

	got := Summarize(drafts)
	if got.Average != 80 {
		t.Errorf("Average = %v, want 80 (not-entered rows must not drag it to 48)", got.Average)
	}
	if got.EnteredCount != 3 {
		t.Errorf("EnteredCount = %d, want 3", got.EnteredCount)
	}
	if got.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", got.TotalCount)
	}
	if got.PassCount != 3 || got.FailCount != 0 {
		t.Errorf("Pass/Fail = %d/%d, want 3/0", got.PassCount, got.FailCount)
	}
}

func TestSummarizePassMark(t *testing.T) {
	drafts := []ScoreDraft{
		entered("s1", 59),
		entered("s2", 60),
		entered("s3", 95),
	}

	got := Summarize(drafts)
	if got.PassCount != 2 || got.FailCount != 1 {
		t.Errorf("default pass mark: Pass/Fail = %d/%d, want 2/1", got.PassCount, got.FailCount)
	}

	got = Summarize(drafts, SummaryOpts{PassMark: 90})
	if got.PassCount != 1 || got.FailCount != 2 {
		t.Errorf("pass mark 90: Pass/Fail = %d/%d, want 1/2", got.PassCount, got.FailCount)
	}
}

func TestSummarizeBucketBoundaries(t *testing.T) {
	tests := []struct {
		percent   int
		wantLabel string
	}{
		{100, "90-100"},
		{90, "90-100"},
		{89, "80-89"},
		{80, "80-89"},
		{70, "70-79"},
		{69, "60-69"},
		{60, "60-69"},
		{59, "0-59"},
		{1, "0-59"},
	}
	for _, tt := range tests {
		got := Summarize([]ScoreDraft{entered("s1", tt.percent)})
		var gotLabel string
		for _, b := range got.Buckets {
			if b.Count == 1 {
				gotLabel = b.Label
			}
		}
		if gotLabel != tt.wantLabel {
			t.Errorf("score %d landed in %q, want %q", tt.percent, gotLabel, tt.wantLabel)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Average != 0 || got.EnteredCount != 0 || got.PassCount != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero summary", got)
	}
	if len(got.Buckets) != 5 {
		t.Errorf("Buckets = %d, want the 5 fixed partitions", len(got.Buckets))
	}
}
