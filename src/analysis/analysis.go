// Package analysis drives one multi-line engine search over a position and
// folds the streamed info lines into White-relative evaluations.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"chesscoach/src/engine"
	"chesscoach/src/logx"
	"chesscoach/src/rules"
)

const (
	// MateScore stands in for forced-mate lines on the centipawn scale.
	MateScore = 32000
	// MultiPV width used for analysis regardless of play policy.
	MultiPVWidth = 4

	emitInterval = 100 * time.Millisecond
)

// Line is one principal variation with its White-relative evaluation.
type Line struct {
	Eval  int      `json:"evaluation"`
	Moves []string `json:"moves"` // SAN
}

// Update is an incremental snapshot pushed to the caller mid-search.
type Update struct {
	Eval    int    `json:"evaluation"`
	Lines   []Line `json:"pvLines"`
	MateIn  *int   `json:"mateIn"` // White-relative; nil when no mate known
	MateFor string `json:"mateFor,omitempty"`
}

// Result is the finished analysis, immutable once returned.
type Result struct {
	Eval     int      `json:"evaluation"`
	BestMove string   `json:"bestMove"` // UCI token, "" if none
	PV       []string `json:"pv"`       // SAN, best line
	Lines    []Line   `json:"pvLines"`  // best-first
	MateIn   *int     `json:"mateIn"`
	MateFor  string   `json:"mateFor,omitempty"`
}

type Analyzer struct {
	sess     engine.Session
	log      logx.Logger
	emitWait time.Duration
}

func New(sess engine.Session, log logx.Logger) *Analyzer {
	return &Analyzer{sess: sess, log: log, emitWait: emitInterval}
}

// Analyze runs a depth-bounded multi-PV search and returns the final
// result, pushing throttled snapshots to onUpdate along the way. Cancelling
// ctx stops the engine; the eventual bestmove is drained and discarded.
func (a *Analyzer) Analyze(ctx context.Context, fen string, depth int, onUpdate func(Update)) (*Result, error) {
	whiteToMove, err := rules.WhiteToMove(fen)
	if err != nil {
		return nil, err
	}

	// Engines are not guaranteed to cope with an already-mated position;
	// answer without the round trip.
	st, err := rules.StatusOf(fen)
	if err != nil {
		return nil, err
	}
	if st == rules.Checkmate {
		return mateNowResult(whiteToMove), nil
	}

	if err := a.sess.SetOption("MultiPV", MultiPVWidth); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrEngineProtocol, err)
	}
	if err := a.sess.SetPositionFEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrEngineProtocol, err)
	}
	prm := engine.SearchParams{MaxDepth: depth}
	h, err := a.sess.Go(prm)
	if err != nil {
		return nil, err
	}

	agg := &aggregator{fen: fen, whiteToMove: whiteToMove, lines: make(map[int]Line)}

	guard := time.NewTimer(prm.Budget())
	defer guard.Stop()
	ctxDone := ctx.Done()
	cancelled := false

	for {
		select {
		case ev := <-h.Infos():
			agg.consume(ev)
			if onUpdate != nil && !cancelled && ctx.Err() == nil && time.Since(agg.lastEmit) >= a.emitWait {
				onUpdate(agg.snapshot())
				agg.lastEmit = time.Now()
			}

		case <-h.Done():
			if !cancelled {
				for _, ev := range h.DrainInfos() {
					agg.consume(ev)
				}
			}
			best, serr := h.Best()
			if serr != nil {
				return nil, serr
			}
			if cancelled {
				return nil, ctx.Err()
			}
			res := agg.result(best)
			// restore the single-line default for whatever search follows
			if err := a.sess.SetOption("MultiPV", 1); err != nil {
				a.log.Warnf("reset MultiPV: %v", err)
			}
			return res, nil

		case <-ctxDone:
			cancelled = true
			ctxDone = nil
			if err := a.sess.Stop(); err != nil {
				a.log.Warnf("stop after cancel: %v", err)
			}

		case <-guard.C:
			_ = a.sess.Stop()
			return nil, fmt.Errorf("%w: no bestmove within search budget", engine.ErrEngineProtocol)
		}
	}
}

func mateNowResult(whiteToMove bool) *Result {
	mate := 0
	res := &Result{MateIn: &mate}
	if whiteToMove {
		res.MateFor = "black"
		res.Eval = -MateScore
	} else {
		res.MateFor = "white"
		res.Eval = MateScore
	}
	return res
}

// aggregator owns the mutable per-search state. Events overwrite per
// multipv index; ordering across depths is not assumed.
type aggregator struct {
	fen         string
	whiteToMove bool
	lines       map[int]Line
	lastEval    int
	mateIn      *int
	lastEmit    time.Time
}

func (g *aggregator) consume(ev engine.InfoEvent) {
	eval := ev.ScoreCP
	if ev.HasMate {
		// mate N outranks any centipawn value on the same line
		if ev.Mate > 0 {
			eval = MateScore
		} else {
			eval = -MateScore
		}
		if ev.MultiPV == 1 {
			whiteMate := ev.Mate
			if !g.whiteToMove {
				whiteMate = -ev.Mate
			}
			g.mateIn = &whiteMate
		}
	}

	// engine scores are side-to-move relative; normalize to White
	whiteEval := eval
	if !g.whiteToMove {
		whiteEval = -eval
	}

	san, err := rules.SANLine(g.fen, ev.PV)
	if err != nil || len(san) == 0 {
		return
	}
	g.lines[ev.MultiPV] = Line{Eval: whiteEval, Moves: san}
	if ev.MultiPV == 1 {
		g.lastEval = whiteEval
	}
}

func (g *aggregator) ordered() []Line {
	idx := make([]int, 0, len(g.lines))
	for i := range g.lines {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]Line, 0, len(idx))
	for _, i := range idx {
		if len(out) == MultiPVWidth {
			break
		}
		out = append(out, g.lines[i])
	}
	return out
}

func (g *aggregator) bestEval(ordered []Line) int {
	if l, ok := g.lines[1]; ok {
		return l.Eval
	}
	if len(ordered) > 0 {
		best := ordered[0].Eval
		for _, l := range ordered[1:] {
			if l.Eval > best {
				best = l.Eval
			}
		}
		return best
	}
	return g.lastEval
}

func (g *aggregator) mateFor() string {
	if g.mateIn == nil {
		return ""
	}
	if *g.mateIn > 0 {
		return "white"
	}
	return "black"
}

func (g *aggregator) snapshot() Update {
	ordered := g.ordered()
	return Update{
		Eval:    g.bestEval(ordered),
		Lines:   ordered,
		MateIn:  g.mateIn,
		MateFor: g.mateFor(),
	}
}

func (g *aggregator) result(best string) *Result {
	ordered := g.ordered()
	res := &Result{
		Eval:     g.bestEval(ordered),
		BestMove: best,
		Lines:    ordered,
		MateIn:   g.mateIn,
		MateFor:  g.mateFor(),
	}
	if len(ordered) > 0 {
		res.PV = ordered[0].Moves
	} else if best != "" {
		// some engines answer bestmove with no info lines at all
		moves := []string{best}
		if san, err := rules.SANOf(g.fen, best); err == nil {
			moves = []string{san}
		}
		res.PV = moves
		res.Lines = []Line{{Eval: g.lastEval, Moves: moves}}
	}
	return res
}
