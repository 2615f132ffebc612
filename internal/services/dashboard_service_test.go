package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbadash/internal/dataset"
	"nbadash/internal/stats"
	"nbadash/pkg/contracts/domain"
)

func newTestStore(source dataset.RowSource) *dataset.Store {
	return dataset.NewStore(dataset.NewLoader(source, nil), nil, nil)
}

func gswSource() *dataset.SliceSource {
	return &dataset.SliceSource{
		Header: []string{"year_id", "date_game", "is_playoffs", "fran_id", "pts", "opp_fran", "opp_pts", "game_result"},
		Records: [][]string{
			{"2015", "2015-04-01", "0", "GSW", "110", "LAL", "98", "W"},
			{"2015", "2015-04-03", "0", "GSW", "95", "MEM", "100", "L"},
			{"2015", "2015-04-05", "1", "GSW", "104", "SAS", "99", "W"},
			{"2014", "2014-11-12", "0", "BOS", "101", "NYK", "99", "W"},
		},
	}
}

func TestDashboardService_FilterOptions(t *testing.T) {
	svc := NewDashboardService(newTestStore(gswSource()), stats.NewEngine(nil), nil, nil)

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2014, 2015}, opts.Years)
	assert.Contains(t, opts.Teams, "GSW")
	assert.Contains(t, opts.Teams, "NYK")
	assert.Equal(t, []domain.GameType{domain.GameTypeRegular, domain.GameTypePlayoff, domain.GameTypeBoth}, opts.GameTypes)
}

func TestDashboardService_FilterOptions_DatasetUnavailable(t *testing.T) {
	svc := NewDashboardService(newTestStore(&dataset.SliceSource{Err: assert.AnError}), stats.NewEngine(nil), nil, nil)

	_, err := svc.FilterOptions(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestDashboardService_Dashboard(t *testing.T) {
	svc := NewDashboardService(newTestStore(gswSource()), stats.NewEngine(nil), nil, nil)

	dash, err := svc.Dashboard(context.Background(), stats.FilterSelection{Year: 2015, Team: "GSW"})
	require.NoError(t, err)

	assert.Equal(t, domain.GameTypeBoth, dash.Selection.GameType, "game type defaults to both")
	assert.Equal(t, 3, dash.Summary.TotalGames)
	assert.Equal(t, 2, dash.Summary.Wins)
	assert.Equal(t, 1, dash.Summary.Losses)
	assert.True(t, dash.Summary.HasData)
}

func TestDashboardService_Dashboard_InvalidSelection(t *testing.T) {
	svc := NewDashboardService(newTestStore(gswSource()), stats.NewEngine(nil), nil, nil)

	tests := []struct {
		name string
		sel  stats.FilterSelection
	}{
		{"missing team", stats.FilterSelection{Year: 2015}},
		{"missing year", stats.FilterSelection{Team: "GSW"}},
		{"unknown game type", stats.FilterSelection{Year: 2015, Team: "GSW", GameType: "exhibition"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Dashboard(context.Background(), tt.sel)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSelection)
		})
	}
}

func TestDashboardService_Dashboard_DatasetUnavailable(t *testing.T) {
	svc := NewDashboardService(newTestStore(&dataset.SliceSource{Err: assert.AnError}), stats.NewEngine(nil), nil, nil)

	_, err := svc.Dashboard(context.Background(), stats.FilterSelection{Year: 2015, Team: "GSW"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestDashboardService_GameLog(t *testing.T) {
	svc := NewDashboardService(newTestStore(gswSource()), stats.NewEngine(nil), nil, nil)

	games, summary, err := svc.GameLog(context.Background(), stats.FilterSelection{
		Year: 2015, Team: "GSW", GameType: domain.GameTypePlayoff,
	})
	require.NoError(t, err)

	require.Len(t, games, 1)
	assert.Equal(t, "SAS", games[0].Opponent)
	assert.Equal(t, 1, summary.Wins)
}

func TestHealthService(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(gswSource())
	svc := NewHealthService(store, nil)

	before := svc.Ready(ctx)
	assert.Equal(t, "not_ready", before.Status)
	assert.False(t, before.DatasetLoaded)

	_, err := store.Table(ctx)
	require.NoError(t, err)

	after := svc.Ready(ctx)
	assert.Equal(t, "ok", after.Status)
	assert.True(t, after.DatasetLoaded)
	assert.Equal(t, 4, after.Records)
	assert.Equal(t, Version, after.Version)
}
