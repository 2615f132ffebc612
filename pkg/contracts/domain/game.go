package domain

import (
	"time"
)

// GameRecord is one row of the loaded dataset. Records are immutable after
// load; the result and scores are stored from the primary team's perspective
// exactly as the source recorded them.
type GameRecord struct {
	Season        int       `json:"season"`
	Date          time.Time `json:"date,omitempty"`
	Order         int       `json:"order"`
	Team          string    `json:"team"`
	Opponent      string    `json:"opponent"`
	Playoffs      bool      `json:"playoffs"`
	Result        Result    `json:"result,omitempty"`
	TeamScore     int       `json:"team_score,omitempty"`
	OpponentScore int       `json:"opponent_score,omitempty"`
	HasScores     bool      `json:"has_scores"`
}

// HasDate reports whether the source carried a parseable game date.
func (g GameRecord) HasDate() bool {
	return !g.Date.IsZero()
}

// Result is a win/loss code from the primary team's perspective.
// The empty value means the result could not be determined from the source.
type Result string

const (
	ResultWin     Result = "W"
	ResultLoss    Result = "L"
	ResultUnknown Result = ""
)

// Invert flips a result to the opposing perspective. Undetermined results
// stay undetermined.
func (r Result) Invert() Result {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return ResultUnknown
	}
}

// GameType selects which portion of a season the dashboard shows.
type GameType string

const (
	GameTypeRegular GameType = "regular"
	GameTypePlayoff GameType = "playoff"
	GameTypeBoth    GameType = "both"
)

// Valid reports whether the game type is one of the recognized values.
func (t GameType) Valid() bool {
	switch t {
	case GameTypeRegular, GameTypePlayoff, GameTypeBoth:
		return true
	}
	return false
}
