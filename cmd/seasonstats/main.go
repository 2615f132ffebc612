package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"nbadash/internal/config"
	"nbadash/internal/dataset"
	"nbadash/internal/infrastructure"
	"nbadash/internal/stats"
	"nbadash/pkg/contracts/domain"
)

// SeasonSummary is one output row: a team's record for one season.
type SeasonSummary struct {
	Year         int     `json:"year"`
	Team         string  `json:"team"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Undetermined int     `json:"undetermined,omitempty"`
	WinPercent   float64 `json:"win_percent"`
}

func main() {
	data := flag.String("data", "", "dataset file path (defaults to the configured dataset path)")
	year := flag.Int("year", 0, "season to summarize (0 = all seasons)")
	team := flag.String("team", "", "team to summarize (empty = all teams)")
	gameType := flag.String("type", "both", "game type: regular | playoff | both")
	format := flag.String("format", "csv", "output format: csv | json")
	out := flag.String("out", "", "output file path (defaults to stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		defaults := config.Default()
		cfg = &defaults
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *data == "" {
		*data = cfg.Dataset.Path
	}

	gt := domain.GameType(*gameType)
	if !gt.Valid() {
		logger.Error("invalid game type", slog.String("type", *gameType))
		os.Exit(1)
	}

	logger.Info("starting season summary export",
		slog.String("dataset", *data),
		slog.Int("year", *year),
		slog.String("team", *team),
		slog.String("game_type", *gameType),
		slog.String("format", *format))

	ctx := context.Background()
	store := dataset.NewStore(dataset.NewLoader(dataset.NewFileSource(*data), logger), logger, nil)

	table, err := store.Table(ctx)
	if err != nil {
		logger.Error("failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	summaries := collectSummaries(ctx, logger, table, *year, *team, gt)
	logger.Info("summaries computed", slog.Int("count", len(summaries)))

	var w *os.File = os.Stdout
	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
			logger.Error("cannot create output directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("cannot create output file",
				slog.String("path", *out),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "json":
		err = writeJSON(w, summaries)
	case "csv":
		err = writeCSV(w, summaries)
	default:
		logger.Error("invalid output format", slog.String("format", *format))
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to write output", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("season summary export complete",
		slog.Int("rows", len(summaries)),
		slog.String("output", *out))
}

func collectSummaries(ctx context.Context, logger *slog.Logger, table *dataset.Table, year int, team string, gt domain.GameType) []SeasonSummary {
	engine := stats.NewEngine(logger)

	years := table.Years
	if year != 0 {
		years = []int{year}
	}
	teams := table.Teams
	if team != "" {
		teams = []string{team}
	}

	var summaries []SeasonSummary
	for _, y := range years {
		for _, t := range teams {
			dash, err := engine.Compute(ctx, table, stats.FilterSelection{
				Year:     y,
				Team:     t,
				GameType: gt,
			})
			if err != nil {
				logger.Warn("skipping selection",
					slog.Int("year", y),
					slog.String("team", t),
					slog.String("error", err.Error()))
				continue
			}
			if dash.Summary.TotalGames == 0 {
				continue
			}
			summaries = append(summaries, SeasonSummary{
				Year:         y,
				Team:         t,
				Games:        dash.Summary.TotalGames,
				Wins:         dash.Summary.Wins,
				Losses:       dash.Summary.Losses,
				Undetermined: dash.Summary.Undetermined,
				WinPercent:   dash.Summary.WinPercent,
			})
		}
	}
	return summaries
}

func writeCSV(w *os.File, summaries []SeasonSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Year", "Team", "Games", "Wins", "Losses", "Undetermined", "WinPercent"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range summaries {
		row := []string{
			strconv.Itoa(s.Year),
			s.Team,
			strconv.Itoa(s.Games),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Undetermined),
			strconv.FormatFloat(s.WinPercent, 'f', 1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(w *os.File, summaries []SeasonSummary) error {
	payload := map[string]interface{}{
		"summaries":    summaries,
		"count":        len(summaries),
		"generated_at": time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
