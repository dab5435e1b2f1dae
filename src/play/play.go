// Package play maps a level's policy onto engine configuration and, for
// mistake policies, picks the move actually played.
package play

import (
	"math/rand"
	"time"

	"chesscoach/src/engine"
	"chesscoach/src/levels"
)

// EngineMaxElo is the upper bound of the engine's strength-limit option.
const EngineMaxElo = 3190

// Configure emits the option set for a policy. The strength-limit toggle
// must precede UCI_Elo, which depends on it; everything else is unordered.
func Configure(sess engine.Session, p levels.PlayPolicy) error {
	switch p.Kind {
	case levels.PolicyMistake:
		// weakness comes from move selection, not the engine: full
		// strength, wide multipv, minimal resources for reproducibility
		if err := sess.SetOption("UCI_LimitStrength", false); err != nil {
			return err
		}
		if err := sess.SetOption("MultiPV", p.MultiPV); err != nil {
			return err
		}
		if err := sess.SetOption("Threads", 1); err != nil {
			return err
		}
		return sess.SetOption("Hash", 1)

	default: // PolicyElo
		if err := sess.SetOption("UCI_LimitStrength", true); err != nil {
			return err
		}
		elo := p.TargetElo
		if elo > EngineMaxElo {
			elo = EngineMaxElo
		}
		if err := sess.SetOption("UCI_Elo", elo); err != nil {
			return err
		}
		return sess.SetOption("MultiPV", 1)
	}
}

// ThinkingDelay simulates human latency before the go-command. Randomized
// for mistake levels, a short fixed pause for rated ones.
func ThinkingDelay(p levels.PlayPolicy, rnd *rand.Rand) time.Duration {
	if p.Kind == levels.PolicyMistake {
		return time.Duration(500+rnd.Intn(1001)) * time.Millisecond
	}
	return 200 * time.Millisecond
}

// SearchBounds derives the go-command limits. Mistake policies cap depth
// and add a per-move randomized time window; elo policies let time govern
// depth entirely.
func SearchBounds(p levels.PlayPolicy, rnd *rand.Rand) engine.SearchParams {
	if p.Kind == levels.PolicyMistake {
		window := p.TimeMaxMs - p.TimeMinMs
		t := p.TimeMinMs
		if window > 0 {
			t += rnd.Intn(window + 1)
		}
		return engine.SearchParams{MaxDepth: p.DepthCap, MaxTimeMs: int64(t)}
	}
	return engine.SearchParams{MaxTimeMs: int64(p.TimeMs)}
}

// SelectMove applies the mistake roll to the engine's best move. The
// second/third tiers sample uniformly from the legal moves instead of the
// engine's ranked alternatives; changing that shifts low-level strength.
func SelectMove(p levels.PlayPolicy, best string, legal []string, rnd *rand.Rand) string {
	if p.Kind != levels.PolicyMistake {
		return best
	}
	if len(legal) < 2 {
		return best
	}

	others := make([]string, 0, len(legal))
	for _, m := range legal {
		if m != best {
			others = append(others, m)
		}
	}
	if len(others) == 0 {
		return best
	}
	blunder := func() string { return others[rnd.Intn(len(others))] }

	// cumulative thresholds in fixed order; probability mass the table
	// leaves unassigned falls into the random tier
	r := rnd.Float64()
	switch {
	case r < p.BestProb:
		return best
	case r < p.BestProb+p.SecondProb:
		return blunder()
	case r < p.BestProb+p.SecondProb+p.ThirdProb:
		return blunder()
	default:
		return blunder()
	}
}
