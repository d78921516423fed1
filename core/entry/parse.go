package entry

import (
	"math"
	"regexp"
	"strconv"
)

// Score is a parsed raw score: `correct` out of `total` questions.
type Score struct {
	Correct int
	Total   int
}

// accepted: "30" or "30/32", surrounding whitespace tolerated
var scoreRegex = regexp.MustCompile(`^\s*([0-9]+)\s*(?:/\s*([0-9]+)\s*)?$`)

// ParseScore converts free-text score input into a Score. A bare number
// ("30") falls back to contextTotal for the total; "30/32" carries its own.
// Anything else - letters, signs, multiple slashes, or a zero/absent total -
// is rejected: the caller keeps the raw text and treats the row as not yet
// entered.
func ParseScore(text string, contextTotal int) (Score, bool) {
	m := scoreRegex.FindStringSubmatch(text)
	if m == nil {
		return Score{}, false
	}

	correct, err := strconv.Atoi(m[1])
	if err != nil {
		return Score{}, false
	}

	total := contextTotal
	if m[2] != "" {
		if total, err = strconv.Atoi(m[2]); err != nil {
			return Score{}, false
		}
	}
	if total <= 0 {
		return Score{}, false
	}
	return Score{Correct: correct, Total: total}, true
}

// Percent returns correct/total as a whole percentage.
//
// This is the single rounding rule for the whole app: half away from zero
// (math.Round), so 93.75 -> 94. A non-positive total yields 0 rather than a
// division by zero.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
