package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbadash/internal/dataset"
	"nbadash/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2015, 4, d, 0, 0, 0, 0, time.UTC)
}

// resolvedSchema returns a schema with teams and results resolved, as the
// franchise adapter would produce. Column indexes are irrelevant to the
// engine beyond presence, so any non-negative value works.
func resolvedSchema() dataset.ResolvedSchema {
	return dataset.ResolvedSchema{
		Adapter: "franchise",
		Year:    0, Date: 1, Team: 2, Opponent: 3,
		Playoffs: 4, Result: 5, TeamScore: 6, OpponentScore: 7,
	}
}

func gswTable() *dataset.Table {
	// Five GSW games ordered 1..5 with results W,W,L,W,L from GSW's
	// perspective. Games 3 and 5 are stored with GSW as the opponent to
	// exercise home/away symmetry and perspective inversion.
	return &dataset.Table{
		Schema: resolvedSchema(),
		Years:  []int{2015},
		Teams:  []string{"GSW", "LAL", "MEM", "NOP", "POR", "SAS"},
		Records: []domain.GameRecord{
			{Season: 2015, Date: day(1), Order: 0, Team: "GSW", Opponent: "LAL", Result: domain.ResultWin, TeamScore: 110, OpponentScore: 98, HasScores: true},
			{Season: 2015, Date: day(3), Order: 1, Team: "GSW", Opponent: "NOP", Result: domain.ResultWin, TeamScore: 106, OpponentScore: 99, HasScores: true},
			{Season: 2015, Date: day(5), Order: 2, Team: "MEM", Opponent: "GSW", Result: domain.ResultWin, TeamScore: 100, OpponentScore: 95, HasScores: true},
			{Season: 2015, Date: day(7), Order: 3, Team: "GSW", Opponent: "POR", Result: domain.ResultWin, TeamScore: 116, OpponentScore: 105, HasScores: true},
			{Season: 2015, Date: day(9), Order: 4, Team: "SAS", Opponent: "GSW", Result: domain.ResultWin, TeamScore: 107, OpponentScore: 92, HasScores: true},
			// Noise that must be filtered out.
			{Season: 2014, Date: time.Date(2014, 4, 1, 0, 0, 0, 0, time.UTC), Order: 5, Team: "GSW", Opponent: "LAL", Result: domain.ResultWin},
			{Season: 2015, Date: day(2), Order: 6, Team: "LAL", Opponent: "MEM", Result: domain.ResultLoss},
		},
	}
}

func TestEngine_GoldenSeason(t *testing.T) {
	engine := NewEngine(nil)

	dash, err := engine.Compute(context.Background(), gswTable(), FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	require.Len(t, dash.Games, 5)

	wantResults := []domain.Result{
		domain.ResultWin, domain.ResultWin, domain.ResultLoss, domain.ResultWin, domain.ResultLoss,
	}
	for i, g := range dash.Games {
		assert.Equal(t, i+1, g.Sequence, "sequence numbers are 1-based and gapless")
		assert.Equal(t, wantResults[i], g.Result, "game %d", i+1)
	}

	// Cumulative wins [1,2,3] at positions [1,2,4]; losses [1,2] at [3,5].
	assert.Equal(t, []SeriesPoint{{1, 1}, {2, 2}, {4, 3}}, dash.Cumulative.Wins)
	assert.Equal(t, []SeriesPoint{{3, 1}, {5, 2}}, dash.Cumulative.Losses)

	assert.Equal(t, 5, dash.Summary.TotalGames)
	assert.Equal(t, 3, dash.Summary.Wins)
	assert.Equal(t, 2, dash.Summary.Losses)
	assert.InDelta(t, 60.0, dash.Summary.WinPercent, 1e-9)
	assert.InDelta(t, 40.0, dash.Summary.LossPercent, 1e-9)
	assert.True(t, dash.Summary.HasData)
}

func TestEngine_HomeAwaySymmetry(t *testing.T) {
	engine := NewEngine(nil)
	table := gswTable()

	dash, err := engine.Compute(context.Background(), table, FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	// Game 3 is stored as MEM vs GSW with a MEM win: it must still appear
	// in GSW's log, perspective-inverted to a loss, with scores flipped.
	game := dash.Games[2]
	assert.Equal(t, "MEM", game.Opponent)
	assert.Equal(t, domain.ResultLoss, game.Result)
	assert.Equal(t, 95, game.PointsScored)
	assert.Equal(t, 100, game.PointsAllowed)
}

func TestEngine_CumulativeProperties(t *testing.T) {
	engine := NewEngine(nil)

	dash, err := engine.Compute(context.Background(), gswTable(), FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	// Each subsequence restarts at 1 and increases by exactly 1 per entry.
	for i, p := range dash.Cumulative.Wins {
		assert.Equal(t, i+1, p.Count)
	}
	for i, p := range dash.Cumulative.Losses {
		assert.Equal(t, i+1, p.Count)
	}

	// Final cumulative wins + losses equals determined games.
	finalWins := dash.Cumulative.Wins[len(dash.Cumulative.Wins)-1].Count
	finalLosses := dash.Cumulative.Losses[len(dash.Cumulative.Losses)-1].Count
	assert.Equal(t, dash.Summary.Determined, finalWins+finalLosses)
}

func TestEngine_GameTypeFilter(t *testing.T) {
	engine := NewEngine(nil)
	table := &dataset.Table{
		Schema: resolvedSchema(),
		Records: []domain.GameRecord{
			{Season: 2015, Date: day(1), Order: 0, Team: "GSW", Opponent: "LAL", Playoffs: false, Result: domain.ResultWin},
			{Season: 2015, Date: day(2), Order: 1, Team: "GSW", Opponent: "MEM", Playoffs: true, Result: domain.ResultLoss},
			{Season: 2015, Date: day(3), Order: 2, Team: "GSW", Opponent: "SAS", Playoffs: true, Result: domain.ResultWin},
		},
	}

	tests := []struct {
		gameType  domain.GameType
		wantGames int
		wantWins  int
	}{
		{domain.GameTypeRegular, 1, 1},
		{domain.GameTypePlayoff, 2, 1},
		{domain.GameTypeBoth, 3, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.gameType), func(t *testing.T) {
			dash, err := engine.Compute(context.Background(), table, FilterSelection{
				Year: 2015, Team: "GSW", GameType: tt.gameType,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantGames, dash.Summary.TotalGames)
			assert.Equal(t, tt.wantWins, dash.Summary.Wins)
		})
	}
}

func TestEngine_PlayoffFilterWithNoPlayoffGames(t *testing.T) {
	engine := NewEngine(nil)
	table := &dataset.Table{
		Schema: resolvedSchema(),
		Records: []domain.GameRecord{
			{Season: 2015, Date: day(1), Order: 0, Team: "GSW", Opponent: "LAL", Result: domain.ResultWin},
		},
	}

	dash, err := engine.Compute(context.Background(), table, FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypePlayoff,
	})
	require.NoError(t, err, "an empty selection is a no-data state, not an error")

	assert.Empty(t, dash.Games)
	assert.Equal(t, 0, dash.Summary.TotalGames)
	assert.False(t, dash.Summary.HasData)
	assert.Zero(t, dash.Summary.WinPercent, "no percentage is computed for a zero total")
	assert.Empty(t, dash.Breakdown.Slices)
}

func TestEngine_ScoreDerivation(t *testing.T) {
	engine := NewEngine(nil)
	schema := resolvedSchema()
	schema.Result = -1 // scores only

	tests := []struct {
		name   string
		record domain.GameRecord
		want   domain.Result
	}{
		{
			name:   "primary side win",
			record: domain.GameRecord{Season: 2015, Team: "GSW", Opponent: "LAL", TeamScore: 100, OpponentScore: 90, HasScores: true},
			want:   domain.ResultWin,
		},
		{
			name:   "opponent side win",
			record: domain.GameRecord{Season: 2015, Team: "LAL", Opponent: "GSW", TeamScore: 90, OpponentScore: 100, HasScores: true},
			want:   domain.ResultWin,
		},
		{
			// Equal scores derive as a loss: the source compares with
			// strictly-greater and ties are not modeled.
			name:   "tie derives as loss",
			record: domain.GameRecord{Season: 2015, Team: "GSW", Opponent: "LAL", TeamScore: 100, OpponentScore: 100, HasScores: true},
			want:   domain.ResultLoss,
		},
		{
			name:   "no result and no scores is undetermined",
			record: domain.GameRecord{Season: 2015, Team: "GSW", Opponent: "LAL"},
			want:   domain.ResultUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &dataset.Table{Schema: schema, Records: []domain.GameRecord{tt.record}}

			dash, err := engine.Compute(context.Background(), table, FilterSelection{
				Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
			})
			require.NoError(t, err)
			require.Len(t, dash.Games, 1)
			assert.Equal(t, tt.want, dash.Games[0].Result)
		})
	}
}

func TestEngine_UndeterminedRowsDoNotFailComputation(t *testing.T) {
	engine := NewEngine(nil)
	table := &dataset.Table{
		Schema: resolvedSchema(),
		Records: []domain.GameRecord{
			{Season: 2015, Date: day(1), Order: 0, Team: "GSW", Opponent: "LAL", Result: domain.ResultWin},
			{Season: 2015, Date: day(2), Order: 1, Team: "GSW", Opponent: "MEM"}, // undetermined
			{Season: 2015, Date: day(3), Order: 2, Team: "GSW", Opponent: "SAS", Result: domain.ResultLoss},
		},
	}

	dash, err := engine.Compute(context.Background(), table, FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, dash.Summary.TotalGames)
	assert.Equal(t, 2, dash.Summary.Determined)
	assert.Equal(t, 1, dash.Summary.Undetermined)
	assert.Equal(t, domain.ResultUnknown, dash.Games[1].Result)

	// Undetermined games keep their sequence slot but join neither
	// cumulative subsequence.
	assert.Equal(t, []SeriesPoint{{1, 1}}, dash.Cumulative.Wins)
	assert.Equal(t, []SeriesPoint{{3, 1}}, dash.Cumulative.Losses)
}

func TestEngine_WinsPlusLossesNeverExceedTeamYearMatches(t *testing.T) {
	engine := NewEngine(nil)
	table := gswTable()

	// Count rows matching (year, team) before the game-type filter.
	matched := 0
	for _, rec := range table.Records {
		if rec.Season == 2015 && (rec.Team == "GSW" || rec.Opponent == "GSW") {
			matched++
		}
	}

	for _, gt := range []domain.GameType{domain.GameTypeRegular, domain.GameTypePlayoff, domain.GameTypeBoth} {
		dash, err := engine.Compute(context.Background(), table, FilterSelection{
			Year: 2015, Team: "GSW", GameType: gt,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, dash.Summary.Wins+dash.Summary.Losses, matched)
	}
}

func TestEngine_OrderFallsBackToNaturalOrder(t *testing.T) {
	engine := NewEngine(nil)
	schema := resolvedSchema()
	schema.Date = -1

	// No dates anywhere: the source's natural order must be preserved.
	table := &dataset.Table{
		Schema: schema,
		Records: []domain.GameRecord{
			{Season: 2015, Order: 10, Team: "GSW", Opponent: "LAL", Result: domain.ResultWin},
			{Season: 2015, Order: 11, Team: "GSW", Opponent: "MEM", Result: domain.ResultLoss},
			{Season: 2015, Order: 12, Team: "GSW", Opponent: "SAS", Result: domain.ResultWin},
		},
	}

	dash, err := engine.Compute(context.Background(), table, FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	require.Len(t, dash.Games, 3)
	assert.Equal(t, "LAL", dash.Games[0].Opponent)
	assert.Equal(t, "MEM", dash.Games[1].Opponent)
	assert.Equal(t, "SAS", dash.Games[2].Opponent)
}

func TestEngine_UnresolvedTeamsDegradesToNoData(t *testing.T) {
	engine := NewEngine(nil)
	table := &dataset.Table{
		Schema:   dataset.ResolvedSchema{Adapter: "heuristic", Team: -1, Opponent: -1, Year: -1, Date: -1, Playoffs: -1, Result: -1, TeamScore: -1, OpponentScore: -1},
		Warnings: []string{"could not find team columns; team filtering is unavailable"},
	}

	dash, err := engine.Compute(context.Background(), table, FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err, "unresolved teams degrade, they do not crash")

	assert.Empty(t, dash.Games)
	assert.False(t, dash.Summary.HasData)
	assert.NotEmpty(t, dash.Warnings)
}

func TestEngine_PercentagesSumToHundred(t *testing.T) {
	engine := NewEngine(nil)

	dash, err := engine.Compute(context.Background(), gswTable(), FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypeBoth,
	})
	require.NoError(t, err)

	require.True(t, dash.Summary.HasData)
	assert.InDelta(t, 100.0, dash.Summary.WinPercent+dash.Summary.LossPercent, 1e-9)
}
