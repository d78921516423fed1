package entry

import (
	"github.com/montanaflynn/stats"
)

// DefaultPassMark is the score (inclusive) from which a row counts as passed.
const DefaultPassMark = 60

// Bucket is one fixed score-range partition of the distribution. Min is
// inclusive; Max is exclusive except for the top bucket, which is closed on
// both ends so 100 lands in 90-100.
type Bucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Summary is the derived KPI view of a draft set. It is never persisted;
// recompute it whenever the set changes.
type Summary struct {
	Average      float64  `json:"average"`
	PassCount    int      `json:"pass_count"`
	FailCount    int      `json:"fail_count"`
	EnteredCount int      `json:"entered_count"`
	TotalCount   int      `json:"total_count"`
	Buckets      []Bucket `json:"buckets"`
}

type SummaryOpts struct {
	PassMark int // defaults to DefaultPassMark
}

func distributionBuckets() []Bucket {
	return []Bucket{
		{Label: "90-100", Min: 90, Max: 100},
		{Label: "80-89", Min: 80, Max: 90},
		{Label: "70-79", Min: 70, Max: 80},
		{Label: "60-69", Min: 60, Max: 70},
		{Label: "0-59", Min: 0, Max: 60},
	}
}

// Summarize recomputes the KPI summary over the given rows. Only entered
// rows (percent > 0) feed the average, pass/fail counts and distribution;
// not-yet-graded rows would otherwise skew every figure toward zero.
func Summarize(drafts []ScoreDraft, opts ...SummaryOpts) Summary {
	passMark := DefaultPassMark
	if len(opts) > 0 && opts[0].PassMark > 0 {
		passMark = opts[0].PassMark
	}

	summary := Summary{
		TotalCount: len(drafts),
		Buckets:    distributionBuckets(),
	}

	percents := make([]float64, 0, len(drafts))
	for _, d := range drafts {
		if !d.Entered() || d.Percent <= 0 {
			continue
		}
		summary.EnteredCount++
		percents = append(percents, float64(d.Percent))

		if d.Percent >= passMark {
			summary.PassCount++
		} else {
			summary.FailCount++
		}

		for i := range summary.Buckets {
			b := summary.Buckets[i]
			if d.Percent >= b.Min && (d.Percent < b.Max || (i == 0 && d.Percent <= b.Max)) {
				summary.Buckets[i].Count++
				break
			}
		}
	}

	if len(percents) > 0 {
		// Mean only errors on an empty input, which is guarded above.
		summary.Average, _ = stats.Mean(percents)
	}
	return summary
}
