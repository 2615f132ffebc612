package dataset

import (
	"strings"
)

// ResolvedSchema maps the logical roles of the dashboard onto column indexes
// of the source table. An index of -1 means the role could not be resolved.
type ResolvedSchema struct {
	Adapter       string   `json:"adapter"`
	Year          int      `json:"year"`
	Date          int      `json:"date"`
	Team          int      `json:"team"`
	Opponent      int      `json:"opponent"`
	Playoffs      int      `json:"playoffs"`
	Result        int      `json:"result"`
	TeamScore     int      `json:"team_score"`
	OpponentScore int      `json:"opponent_score"`
	Warnings      []string `json:"warnings,omitempty"`
}

func unresolvedSchema(adapter string) ResolvedSchema {
	return ResolvedSchema{
		Adapter:       adapter,
		Year:          -1,
		Date:          -1,
		Team:          -1,
		Opponent:      -1,
		Playoffs:      -1,
		Result:        -1,
		TeamScore:     -1,
		OpponentScore: -1,
	}
}

// HasTeams reports whether both team identity columns resolved. Without them
// no team-based filtering is possible.
func (s ResolvedSchema) HasTeams() bool { return s.Team >= 0 && s.Opponent >= 0 }

// HasResult reports whether a precomputed result column resolved.
func (s ResolvedSchema) HasResult() bool { return s.Result >= 0 }

// HasScores reports whether a per-side score column pair resolved.
func (s ResolvedSchema) HasScores() bool { return s.TeamScore >= 0 && s.OpponentScore >= 0 }

// HasYear reports whether an explicit year column resolved.
func (s ResolvedSchema) HasYear() bool { return s.Year >= 0 }

// HasDate reports whether a date column resolved.
func (s ResolvedSchema) HasDate() bool { return s.Date >= 0 }

// HasPlayoffs reports whether a playoff indicator column resolved.
func (s ResolvedSchema) HasPlayoffs() bool { return s.Playoffs >= 0 }

// ResultDeterminable reports whether game results can be derived at all,
// either from a result column or from a score pair.
func (s ResolvedSchema) ResultDeterminable() bool { return s.HasResult() || s.HasScores() }

// Adapter resolves one known schema convention against a header row.
// Each adapter either fully resolves the roles it covers or declines,
// leaving the next adapter in the list to try.
type Adapter interface {
	Name() string
	Resolve(header []string) (ResolvedSchema, bool)
}

// DefaultAdapters returns the prioritized adapter list: the franchise layout
// of nba_all_elo exports, the team1/team2 pair layout, then a name-scanning
// heuristic as the last resort.
func DefaultAdapters() []Adapter {
	return []Adapter{
		franchiseAdapter{},
		pairAdapter{},
		heuristicAdapter{},
	}
}

// ResolveSchema tries the adapters in order and returns the first schema
// that resolves. The heuristic adapter never declines, so a schema is always
// produced; callers must check HasTeams and ResultDeterminable.
func ResolveSchema(header []string, adapters []Adapter) ResolvedSchema {
	for _, a := range adapters {
		if schema, ok := a.Resolve(header); ok {
			return schema
		}
	}
	return unresolvedSchema("none")
}

// columnIndex builds a lookup of normalized header name to column position.
// The first occurrence of a duplicated name wins.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func lookup(idx map[string]int, names ...string) int {
	for _, name := range names {
		if i, ok := idx[name]; ok {
			return i
		}
	}
	return -1
}

// scanContains returns the positions of all columns whose name contains the
// given substring, in column order.
func scanContains(header []string, substr string) []int {
	var found []int
	for i, name := range header {
		if strings.Contains(strings.ToLower(name), substr) {
			found = append(found, i)
		}
	}
	return found
}

// franchiseAdapter matches the nba_all_elo franchise layout: one row per
// team-game with a precomputed result code for the primary side.
type franchiseAdapter struct{}

func (franchiseAdapter) Name() string { return "franchise" }

func (franchiseAdapter) Resolve(header []string) (ResolvedSchema, bool) {
	idx := columnIndex(header)

	schema := unresolvedSchema("franchise")
	schema.Team = lookup(idx, "fran_id")
	schema.Opponent = lookup(idx, "opp_fran")
	schema.Year = lookup(idx, "year_id")
	schema.Result = lookup(idx, "game_result")
	if schema.Team < 0 || schema.Opponent < 0 || schema.Year < 0 || schema.Result < 0 {
		return ResolvedSchema{}, false
	}

	schema.Playoffs = lookup(idx, "is_playoffs")
	schema.Date = lookup(idx, "date_game")
	schema.TeamScore = lookup(idx, "pts")
	schema.OpponentScore = lookup(idx, "opp_pts")
	return schema, true
}

// pairAdapter matches the team1/team2 layout where results come from a score
// column pair under one of two naming conventions.
type pairAdapter struct{}

func (pairAdapter) Name() string { return "pair" }

func (pairAdapter) Resolve(header []string) (ResolvedSchema, bool) {
	idx := columnIndex(header)

	schema := unresolvedSchema("pair")
	schema.Team = lookup(idx, "team1")
	schema.Opponent = lookup(idx, "team2")
	if schema.Team < 0 || schema.Opponent < 0 {
		return ResolvedSchema{}, false
	}

	// A precomputed result column takes priority over score pairs.
	schema.Result = lookup(idx, "game_result", "result")

	if s1, s2 := lookup(idx, "team1_score"), lookup(idx, "team2_score"); s1 >= 0 && s2 >= 0 {
		schema.TeamScore, schema.OpponentScore = s1, s2
	} else if s1, s2 := lookup(idx, "score1"), lookup(idx, "score2"); s1 >= 0 && s2 >= 0 {
		schema.TeamScore, schema.OpponentScore = s1, s2
	}

	if !schema.ResultDeterminable() {
		return ResolvedSchema{}, false
	}

	schema.Year = lookup(idx, "year", "year_id", "season")
	schema.Date = lookup(idx, "date", "date_game", "game_date")
	if schema.Year < 0 && schema.Date < 0 {
		return ResolvedSchema{}, false
	}

	schema.Playoffs = lookup(idx, "is_playoffs", "playoff", "playoffs")
	if schema.Playoffs < 0 {
		schema.Warnings = append(schema.Warnings,
			"no playoff indicator column found; game-type filtering will treat every game as regular season")
	}

	return schema, true
}

// heuristicAdapter scans column names for role keywords. It never declines;
// unresolved roles are left at -1 with a warning so the caller can degrade
// instead of failing.
type heuristicAdapter struct{}

func (heuristicAdapter) Name() string { return "heuristic" }

func (heuristicAdapter) Resolve(header []string) (ResolvedSchema, bool) {
	idx := columnIndex(header)
	schema := unresolvedSchema("heuristic")

	if teams := scanContains(header, "team"); len(teams) >= 2 {
		schema.Team, schema.Opponent = teams[0], teams[1]
	} else {
		schema.Warnings = append(schema.Warnings,
			"could not find team columns; team filtering is unavailable")
	}

	schema.Result = lookup(idx, "game_result", "result")
	if schema.Result < 0 {
		if scores := scanContains(header, "score"); len(scores) >= 2 {
			schema.TeamScore, schema.OpponentScore = scores[0], scores[1]
			schema.Warnings = append(schema.Warnings,
				"using first two score columns for results; results may be inaccurate")
		} else {
			schema.Warnings = append(schema.Warnings,
				"could not find result or score columns; game results are undetermined")
		}
	}

	if years := scanContains(header, "year"); len(years) > 0 {
		schema.Year = years[0]
	}
	if dates := scanContains(header, "date"); len(dates) > 0 {
		schema.Date = dates[0]
	}
	if playoffs := scanContains(header, "playoff"); len(playoffs) > 0 {
		schema.Playoffs = playoffs[0]
	}

	return schema, true
}
