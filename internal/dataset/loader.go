package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"nbadash/pkg/contracts/domain"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2006/01/02",
	"01/02/2006",
}

// Table is the loaded dataset: the immutable record set, the schema it was
// read through, and the filter catalogs derived from it.
type Table struct {
	Records  []domain.GameRecord `json:"records"`
	Schema   ResolvedSchema      `json:"schema"`
	Years    []int               `json:"years"`
	Teams    []string            `json:"teams"`
	Warnings []string            `json:"warnings,omitempty"`
	LoadID   string              `json:"load_id"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// Loader reads a row source once and produces a Table.
type Loader struct {
	source   RowSource
	adapters []Adapter
	logger   *slog.Logger
}

// NewLoader creates a loader over the given source using the default
// adapter list.
func NewLoader(source RowSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:   source,
		adapters: DefaultAdapters(),
		logger:   logger,
	}
}

// WithAdapters replaces the adapter list, keeping priority order.
func (l *Loader) WithAdapters(adapters ...Adapter) *Loader {
	l.adapters = adapters
	return l
}

// Load reads the source, resolves the schema and builds the record set.
// A source that cannot be read at all is a load failure; schema ambiguity is
// not, it degrades to unresolved roles with warnings.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	header, rows, err := l.source.Rows()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	schema := ResolveSchema(header, l.adapters)
	l.logger.InfoContext(ctx, "resolved dataset schema",
		slog.String("adapter", schema.Adapter),
		slog.Int("columns", len(header)),
		slog.Int("rows", len(rows)))
	for _, warning := range schema.Warnings {
		l.logger.WarnContext(ctx, "schema warning", slog.String("warning", warning))
	}

	table := &Table{
		Schema:   schema,
		Warnings: schema.Warnings,
		LoadID:   uuid.New().String(),
		LoadedAt: time.Now(),
	}

	yearSet := make(map[int]struct{})
	teamSet := make(map[string]struct{})

	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}

		rec := domain.GameRecord{Order: i}

		rec.Team = cell(row, schema.Team)
		rec.Opponent = cell(row, schema.Opponent)

		if schema.HasDate() {
			rec.Date = parseDate(cell(row, schema.Date))
		}

		if schema.HasYear() {
			rec.Season = parseInt(cell(row, schema.Year))
		}
		if rec.Season == 0 && rec.HasDate() {
			rec.Season = rec.Date.Year()
		}

		if schema.HasPlayoffs() {
			rec.Playoffs = parseBool(cell(row, schema.Playoffs))
		}

		if schema.HasResult() {
			rec.Result = parseResult(cell(row, schema.Result))
		}

		if schema.HasScores() {
			ts, tok := parseScore(cell(row, schema.TeamScore))
			os, ook := parseScore(cell(row, schema.OpponentScore))
			if tok && ook {
				rec.TeamScore, rec.OpponentScore = ts, os
				rec.HasScores = true
			}
		}

		if rec.Team != "" {
			teamSet[rec.Team] = struct{}{}
		}
		if rec.Opponent != "" {
			teamSet[rec.Opponent] = struct{}{}
		}
		if rec.Season != 0 {
			yearSet[rec.Season] = struct{}{}
		}

		table.Records = append(table.Records, rec)
	}

	table.Years = sortedYears(yearSet)
	table.Teams = sortedTeams(teamSet)

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("load_id", table.LoadID),
		slog.Int("records", len(table.Records)),
		slog.Int("years", len(table.Years)),
		slog.Int("teams", len(table.Teams)))

	return table, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return v
}

func parseScore(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

func parseResult(s string) domain.Result {
	switch strings.ToUpper(s) {
	case "W", "WIN":
		return domain.ResultWin
	case "L", "LOSS", "LOSE":
		return domain.ResultLoss
	}
	return domain.ResultUnknown
}

func sortedYears(set map[int]struct{}) []int {
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func sortedTeams(set map[string]struct{}) []string {
	teams := make([]string, 0, len(set))
	for t := range set {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}
