// Package coach is the orchestration facade: it owns one engine session
// and exposes the move-request and analysis surfaces to callers. Usage is
// serialized; the session rejects overlapping searches.
package coach

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"chesscoach/src/analysis"
	"chesscoach/src/engine"
	"chesscoach/src/levels"
	"chesscoach/src/logx"
	"chesscoach/src/play"
	"chesscoach/src/rules"
)

type Coach struct {
	sess     engine.Session
	analyzer *analysis.Analyzer
	log      logx.Logger
	rnd      *rand.Rand
}

func New(log logx.Logger, sess engine.Session) *Coach {
	return &Coach{
		sess:     sess,
		analyzer: analysis.New(sess, log),
		log:      log,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Coach) Init() error { return c.sess.Init() }
func (c *Coach) Close()      { c.sess.Close() }

// GetAIMove configures the engine for the level's policy, searches the
// position and hands the chosen move (UCI token) to onMove. On failure no
// move is produced; a fallback move would mask engine trouble.
func (c *Coach) GetAIMove(ctx context.Context, fen string, level int, onMove func(move string)) error {
	profile := levels.ProfileOf(level)
	policy := profile.Play
	c.log.Infof("ai move request: level %d (%s)", profile.Level, profile.DisplayName)

	if err := play.Configure(c.sess, policy); err != nil {
		return fmt.Errorf("%w: configure: %v", engine.ErrEngineProtocol, err)
	}
	if err := c.sess.SetPositionFEN(fen); err != nil {
		return fmt.Errorf("%w: position: %v", engine.ErrEngineProtocol, err)
	}

	// human-latency pause sits between configuration and the go-command
	select {
	case <-time.After(play.ThinkingDelay(policy, c.rnd)):
	case <-ctx.Done():
		return ctx.Err()
	}

	prm := play.SearchBounds(policy, c.rnd)
	h, err := c.sess.Go(prm)
	if err != nil {
		return err
	}

	best, err := c.waitBest(ctx, h, prm)
	if err != nil {
		return err
	}
	if best == "" {
		return engine.ErrNoLegalMove
	}

	final := best
	if policy.Kind == levels.PolicyMistake {
		legal, err := rules.LegalMoves(fen)
		if err != nil {
			return err
		}
		final = play.SelectMove(policy, best, legal, c.rnd)
		if final != best {
			c.log.Infof("mistake injected: %s -> %s", best, final)
		}
	}

	onMove(final)
	return nil
}

// GetAIMoveForRating picks the level from the player's rating first.
func (c *Coach) GetAIMoveForRating(ctx context.Context, fen string, playerRating int, onMove func(move string)) error {
	return c.GetAIMove(ctx, fen, levels.LevelForRating(playerRating), onMove)
}

// AnalyzePosition runs a depth-bounded multi-PV analysis independent of
// any play policy.
func (c *Coach) AnalyzePosition(ctx context.Context, fen string, depth int, onUpdate func(analysis.Update)) (*analysis.Result, error) {
	return c.analyzer.Analyze(ctx, fen, depth, onUpdate)
}

func (c *Coach) waitBest(ctx context.Context, h *engine.Search, prm engine.SearchParams) (string, error) {
	guard := time.NewTimer(prm.Budget())
	defer guard.Stop()
	ctxDone := ctx.Done()
	cancelled := false
	for {
		select {
		case <-h.Infos():
			// move requests don't consume the stream, only the bestmove
		case <-h.Done():
			best, err := h.Best()
			if err != nil {
				return "", err
			}
			if cancelled {
				return "", ctx.Err()
			}
			return best, nil
		case <-ctxDone:
			cancelled = true
			ctxDone = nil
			if err := c.sess.Stop(); err != nil {
				c.log.Warnf("stop after cancel: %v", err)
			}
		case <-guard.C:
			_ = c.sess.Stop()
			return "", fmt.Errorf("%w: no bestmove within search budget", engine.ErrEngineProtocol)
		}
	}
}
