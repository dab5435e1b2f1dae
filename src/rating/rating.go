// Package rating tracks a player's score across games with
// streak-sensitive adjustments. ApplyOutcome is a pure state transition;
// persistence belongs to the caller.
package rating

import "chesscoach/src/levels"

type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
	Draw Outcome = "draw"
)

type State struct {
	Rating            int     `json:"rating"`
	TotalGames        int     `json:"totalGames"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Draws             int     `json:"draws"`
	WinRate           float64 `json:"winRate"`
	WinStreak         int     `json:"winStreak"`
	LossStreak        int     `json:"lossStreak"`
	ConsecutiveLosses int     `json:"consecutiveLosses"`
}

// NewState returns the initial state for a fresh player.
func NewState(startRating int) State {
	return State{Rating: clamp(startRating)}
}

func clamp(r int) int {
	if r < levels.MinRating {
		return levels.MinRating
	}
	if r > levels.MaxRating {
		return levels.MaxRating
	}
	return r
}

// ApplyOutcome folds one game result into the state.
//
// Wins gain progressively with the streak: +8, +16, +32, then +64 for every
// further consecutive win. Losses cost a flat -8; a third consecutive loss
// costs -8 more and resets the consecutive-loss counter. Draws reset both
// streaks and leave the rating untouched.
func ApplyOutcome(s State, o Outcome) State {
	switch o {
	case Win:
		s.Wins++
		s.WinStreak++
		s.LossStreak = 0
		s.ConsecutiveLosses = 0

		inc := 8
		if s.WinStreak >= 2 {
			inc = 16
		}
		if s.WinStreak >= 3 {
			inc = 32
		}
		if s.WinStreak >= 4 {
			inc = 64
		}
		s.Rating = clamp(s.Rating + inc)

	case Loss:
		s.Losses++
		s.WinStreak = 0
		s.LossStreak++
		s.ConsecutiveLosses++

		s.Rating = clamp(s.Rating - 8)
		if s.ConsecutiveLosses >= 3 {
			s.Rating = clamp(s.Rating - 8)
			s.ConsecutiveLosses = 0
		}

	case Draw:
		s.Draws++
		s.WinStreak = 0
		s.LossStreak = 0
		s.ConsecutiveLosses = 0
	}

	s.TotalGames++
	if s.TotalGames > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalGames) * 100
	}
	return s
}
