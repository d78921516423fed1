package entry

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		contextTotal int
		want         Score
		wantOk       bool
	}{
		{name: "fraction", text: "30/32", contextTotal: 40, want: Score{30, 32}, wantOk: true},
		{name: "bare number falls back to context total", text: "30", contextTotal: 40, want: Score{30, 40}, wantOk: true},
		{name: "surrounding whitespace", text: "  18 / 20 ", contextTotal: 40, want: Score{18, 20}, wantOk: true},
		{name: "zero correct", text: "0/20", contextTotal: 40, want: Score{0, 20}, wantOk: true},
		{name: "letters", text: "abc", contextTotal: 40},
		{name: "mixed", text: "30a", contextTotal: 40},
		{name: "negative", text: "-3/20", contextTotal: 40},
		{name: "multiple slashes", text: "30/32/2", contextTotal: 40},
		{name: "zero total", text: "30/0", contextTotal: 40},
		{name: "no context total", text: "30", contextTotal: 0},
		{name: "empty", text: "", contextTotal: 40},
		{name: "lone slash", text: "/", contextTotal: 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseScore(tt.text, tt.contextTotal)
			if ok != tt.wantOk {
				t.Fatalf("ParseScore(%q, %d) ok = %v, want %v", tt.text, tt.contextTotal, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q, %d) = %+v, want %+v", tt.text, tt.contextTotal, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name           string
		correct, total int
		want           int
	}{
		{name: "exact", correct: 18, total: 20, want: 90},
		{name: "half rounds up", correct: 30, total: 32, want: 94}, // 93.75
		{name: "rounds down", correct: 28, total: 32, want: 88},    // 87.5 -> 88 (half away from zero)
		{name: "full marks", correct: 20, total: 20, want: 100},
		{name: "zero", correct: 0, total: 20, want: 0},
		{name: "zero total guarded", correct: 30, total: 0, want: 0},
		{name: "negative total guarded", correct: 30, total: -1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.correct, tt.total); got != tt.want {
				t.Errorf("Percent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}
