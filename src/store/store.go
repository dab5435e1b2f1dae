// Package store persists finished games and player stats. The
// orchestration core never touches it; callers own persistence.
package store

import (
	"context"
	"time"

	"chesscoach/src/rating"
)

// DefaultStartRating seeds stats for a player with no record yet.
const DefaultStartRating = 100

type GameRecord struct {
	ID       string         `json:"id"`
	PlayedAt time.Time      `json:"playedAt"`
	Level    int            `json:"level"`
	Result   rating.Outcome `json:"result"`
	Moves    []string       `json:"moves"` // SAN
	FinalFEN string         `json:"finalFen"`
}

type Store interface {
	Stats(ctx context.Context, player string) (rating.State, error)
	SaveStats(ctx context.Context, player string, s rating.State) error
	SaveGame(ctx context.Context, player string, g GameRecord) (string, error)
	Games(ctx context.Context, player string) ([]GameRecord, error)
}
