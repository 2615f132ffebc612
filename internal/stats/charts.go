package stats

import (
	"nbadash/pkg/contracts/domain"
)

// SeriesPoint is one point of a cumulative line: the game's sequence number
// in the full filtered log and the running count within its own subsequence.
type SeriesPoint struct {
	Game  int `json:"game"`
	Count int `json:"count"`
}

// CumulativeChart carries the cumulative wins and losses line series. Each
// series restarts at 1 and increases by exactly 1 per entry.
type CumulativeChart struct {
	Wins   []SeriesPoint `json:"wins"`
	Losses []SeriesPoint `json:"losses"`
}

// BuildCumulative extracts the win-only and loss-only cumulative series from
// the annotated log.
func BuildCumulative(games []AnnotatedGame) CumulativeChart {
	var chart CumulativeChart
	for _, g := range games {
		switch g.Result {
		case domain.ResultWin:
			chart.Wins = append(chart.Wins, SeriesPoint{Game: g.Sequence, Count: g.WinsToDate})
		case domain.ResultLoss:
			chart.Losses = append(chart.Losses, SeriesPoint{Game: g.Sequence, Count: g.LossesToDate})
		}
	}
	return chart
}

// PieSlice is one segment of the win/loss distribution.
type PieSlice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// PieChart is the win/loss percentage breakdown. Slices are empty in the
// no-data state.
type PieChart struct {
	Slices []PieSlice `json:"slices"`
	Total  int        `json:"total"`
}

// BuildBreakdown turns summary counts into pie slices. When the summary has
// no determined games the chart stays empty instead of showing 0% segments.
func BuildBreakdown(sum Summary) PieChart {
	if !sum.HasData {
		return PieChart{}
	}
	return PieChart{
		Total: sum.Determined,
		Slices: []PieSlice{
			{Label: "Wins", Count: sum.Wins, Percent: sum.WinPercent},
			{Label: "Losses", Count: sum.Losses, Percent: sum.LossPercent},
		},
	}
}

// PointsBar is one game's points scored and allowed from the selected team's
// perspective.
type PointsBar struct {
	Game    int `json:"game"`
	Scored  int `json:"scored"`
	Allowed int `json:"allowed"`
}

// PointsChart is the scored-vs-allowed bar series.
type PointsChart struct {
	Bars []PointsBar `json:"bars"`
}

// BuildPoints builds the bar series from games with resolved scores.
// Returns nil when the schema carried no usable score pair, so the variant
// without per-side scores simply omits the chart.
func BuildPoints(games []AnnotatedGame) *PointsChart {
	var chart PointsChart
	for _, g := range games {
		if !g.HasScores {
			continue
		}
		chart.Bars = append(chart.Bars, PointsBar{
			Game:    g.Sequence,
			Scored:  g.PointsScored,
			Allowed: g.PointsAllowed,
		})
	}
	if len(chart.Bars) == 0 {
		return nil
	}
	return &chart
}
