package stats

import (
	"context"
	"log/slog"
	"sort"

	"nbadash/internal/dataset"
	"nbadash/pkg/contracts/domain"
)

// FilterSelection is the user's dashboard selection.
type FilterSelection struct {
	Year     int             `json:"year" validate:"required"`
	Team     string          `json:"team" validate:"required"`
	GameType domain.GameType `json:"game_type" validate:"omitempty,oneof=regular playoff both"`
}

// AnnotatedGame is one game of the filtered, ordered log seen from the
// selected team's perspective.
type AnnotatedGame struct {
	Sequence      int           `json:"sequence"`
	Date          string        `json:"date,omitempty"`
	Team          string        `json:"team"`
	Opponent      string        `json:"opponent"`
	Playoffs      bool          `json:"playoffs"`
	Result        domain.Result `json:"result,omitempty"`
	WinsToDate    int           `json:"wins_to_date"`
	LossesToDate  int           `json:"losses_to_date"`
	PointsScored  int           `json:"points_scored,omitempty"`
	PointsAllowed int           `json:"points_allowed,omitempty"`
	HasScores     bool          `json:"has_scores"`
}

// Summary holds the aggregate counts for the percentage displays. Percentages
// are computed over determined games only and never when that total is zero;
// HasData distinguishes the no-data state from a real 0/0 split.
type Summary struct {
	TotalGames   int     `json:"total_games"`
	Determined   int     `json:"determined_games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Undetermined int     `json:"undetermined"`
	WinPercent   float64 `json:"win_percent"`
	LossPercent  float64 `json:"loss_percent"`
	HasData      bool    `json:"has_data"`
}

// Dashboard is the full recomputation result for one selection.
type Dashboard struct {
	Selection  FilterSelection `json:"selection"`
	Games      []AnnotatedGame `json:"games"`
	Summary    Summary         `json:"summary"`
	Cumulative CumulativeChart `json:"cumulative"`
	Breakdown  PieChart        `json:"breakdown"`
	Points     *PointsChart    `json:"points,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// Engine recomputes the dashboard from scratch for every selection. The
// loaded table is read-only; the engine never mutates it.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Compute filters the table by the selection, orders the games, derives
// per-game results from the selected team's perspective and produces the
// annotated log, summary and chart series. Rows whose result cannot be
// derived are marked undetermined rather than failing the computation.
func (e *Engine) Compute(ctx context.Context, table *dataset.Table, sel FilterSelection) (*Dashboard, error) {
	if sel.GameType == "" {
		sel.GameType = domain.GameTypeBoth
	}

	dash := &Dashboard{
		Selection: sel,
		Warnings:  table.Warnings,
	}

	if !table.Schema.HasTeams() {
		e.logger.WarnContext(ctx, "team columns unresolved, no team filtering possible",
			slog.String("adapter", table.Schema.Adapter))
		dash.Breakdown = BuildBreakdown(dash.Summary)
		return dash, nil
	}

	filtered := filterRecords(table.Records, sel)
	orderRecords(filtered)

	wins, losses := 0, 0
	for i, rec := range filtered {
		game := AnnotatedGame{
			Sequence: i + 1,
			Team:     sel.Team,
			Playoffs: rec.Playoffs,
			Result:   deriveResult(rec, sel.Team),
		}

		if rec.Team == sel.Team {
			game.Opponent = rec.Opponent
		} else {
			game.Opponent = rec.Team
		}
		if rec.HasDate() {
			game.Date = rec.Date.Format("2006-01-02")
		}
		if rec.HasScores {
			game.HasScores = true
			if rec.Team == sel.Team {
				game.PointsScored, game.PointsAllowed = rec.TeamScore, rec.OpponentScore
			} else {
				game.PointsScored, game.PointsAllowed = rec.OpponentScore, rec.TeamScore
			}
		}

		switch game.Result {
		case domain.ResultWin:
			wins++
		case domain.ResultLoss:
			losses++
		}
		game.WinsToDate = wins
		game.LossesToDate = losses

		dash.Games = append(dash.Games, game)
	}

	dash.Summary = summarize(dash.Games)
	dash.Cumulative = BuildCumulative(dash.Games)
	dash.Breakdown = BuildBreakdown(dash.Summary)
	dash.Points = BuildPoints(dash.Games)

	e.logger.DebugContext(ctx, "dashboard computed",
		slog.Int("year", sel.Year),
		slog.String("team", sel.Team),
		slog.String("game_type", string(sel.GameType)),
		slog.Int("games", dash.Summary.TotalGames),
		slog.Int("wins", dash.Summary.Wins),
		slog.Int("losses", dash.Summary.Losses))

	return dash, nil
}

// filterRecords selects the games of the chosen year involving the chosen
// team on either side, then restricts by game type.
func filterRecords(records []domain.GameRecord, sel FilterSelection) []domain.GameRecord {
	var filtered []domain.GameRecord
	for _, rec := range records {
		if rec.Season != sel.Year {
			continue
		}
		if rec.Team != sel.Team && rec.Opponent != sel.Team {
			continue
		}
		switch sel.GameType {
		case domain.GameTypePlayoff:
			if !rec.Playoffs {
				continue
			}
		case domain.GameTypeRegular:
			if rec.Playoffs {
				continue
			}
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// orderRecords sorts by date ascending; rows without dates (and date ties)
// fall back to the source's natural order.
func orderRecords(records []domain.GameRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Order < b.Order
	})
}

// deriveResult computes the win/loss label from the selected team's
// perspective. A direct result code is used as-is on the primary side and
// inverted on the opponent side. With scores only, strictly greater wins;
// a tie derives as a loss, matching the source's not-greater-than comparison.
func deriveResult(rec domain.GameRecord, team string) domain.Result {
	primary := rec.Team == team

	if rec.Result != domain.ResultUnknown {
		if primary {
			return rec.Result
		}
		return rec.Result.Invert()
	}

	if rec.HasScores {
		us, them := rec.TeamScore, rec.OpponentScore
		if !primary {
			us, them = them, us
		}
		if us > them {
			return domain.ResultWin
		}
		return domain.ResultLoss
	}

	return domain.ResultUnknown
}

func summarize(games []AnnotatedGame) Summary {
	sum := Summary{TotalGames: len(games)}
	for _, g := range games {
		switch g.Result {
		case domain.ResultWin:
			sum.Wins++
		case domain.ResultLoss:
			sum.Losses++
		default:
			sum.Undetermined++
		}
	}
	sum.Determined = sum.Wins + sum.Losses

	// Never divide by a zero total: zero determined games is the explicit
	// no-data state.
	if sum.Determined > 0 {
		sum.HasData = true
		sum.WinPercent = float64(sum.Wins) / float64(sum.Determined) * 100
		sum.LossPercent = float64(sum.Losses) / float64(sum.Determined) * 100
	}
	return sum
}
