package play

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"chesscoach/src/engine"
	"chesscoach/src/levels"
)

type optionRecorder struct {
	options []string
}

func (f *optionRecorder) Init() error { return nil }
func (f *optionRecorder) SetOption(name string, value interface{}) error {
	f.options = append(f.options, fmt.Sprintf("%s=%v", name, value))
	return nil
}
func (f *optionRecorder) SetPositionFEN(fen string) error { return nil }
func (f *optionRecorder) Go(prm engine.SearchParams) (*engine.Search, error) {
	return nil, nil
}
func (f *optionRecorder) Stop() error { return nil }
func (f *optionRecorder) Close()      {}

var legal = []string{"e2e4", "d2d4", "g1f3", "b1c3", "a2a3"}

func mistakePolicy(best, second, third, random float64) levels.PlayPolicy {
	return levels.PlayPolicy{
		Kind: levels.PolicyMistake, MultiPV: 12,
		BestProb: best, SecondProb: second, ThirdProb: third, RandomProb: random,
		DepthCap: 2, TimeMinMs: 200, TimeMaxMs: 400,
	}
}

func TestSelectMoveAlwaysBest(t *testing.T) {
	p := mistakePolicy(1.0, 0, 0, 0)
	for seed := int64(0); seed < 200; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		if got := SelectMove(p, "e2e4", legal, rnd); got != "e2e4" {
			t.Fatalf("seed %d: got %s, want best", seed, got)
		}
	}
}

func TestSelectMoveNeverBest(t *testing.T) {
	p := mistakePolicy(0, 0.5, 0.3, 0.2)
	for seed := int64(0); seed < 200; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		got := SelectMove(p, "e2e4", legal, rnd)
		if got == "e2e4" {
			t.Fatalf("seed %d: best move chosen with bestProb 0", seed)
		}
		found := false
		for _, m := range legal {
			if m == got {
				found = true
			}
		}
		if !found {
			t.Fatalf("seed %d: %s not a legal move", seed, got)
		}
	}
}

func TestSelectMoveUnassignedMassFallsToRandom(t *testing.T) {
	// probabilities sum to 0.5; the remainder must still produce a move
	p := mistakePolicy(0.2, 0.2, 0.1, 0)
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		got := SelectMove(p, "e2e4", legal, rnd)
		if got == "" {
			t.Fatal("no move selected")
		}
	}
}

func TestSelectMoveEloPassthrough(t *testing.T) {
	p := levels.PlayPolicy{Kind: levels.PolicyElo, TargetElo: 1400, TimeMs: 2000}
	rnd := rand.New(rand.NewSource(1))
	if got := SelectMove(p, "e2e4", legal, rnd); got != "e2e4" {
		t.Errorf("elo policy must pass through, got %s", got)
	}
}

func TestSelectMoveTooFewLegal(t *testing.T) {
	p := mistakePolicy(0, 0, 0, 1.0)
	rnd := rand.New(rand.NewSource(1))
	if got := SelectMove(p, "h7h8", []string{"h7h8"}, rnd); got != "h7h8" {
		t.Errorf("single legal move: got %s", got)
	}
	if got := SelectMove(p, "h7h8", nil, rnd); got != "h7h8" {
		t.Errorf("empty legal list: got %s", got)
	}
}

func TestConfigureMistake(t *testing.T) {
	sess := &optionRecorder{}
	if err := Configure(sess, mistakePolicy(0.5, 0.3, 0.15, 0.05)); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"UCI_LimitStrength=false",
		"MultiPV=12",
		"Threads=1",
		"Hash=1",
	}
	if len(sess.options) != len(want) {
		t.Fatalf("options = %v", sess.options)
	}
	for i := range want {
		if sess.options[i] != want[i] {
			t.Errorf("option %d = %s, want %s", i, sess.options[i], want[i])
		}
	}
}

func TestConfigureEloClampsAndOrders(t *testing.T) {
	sess := &optionRecorder{}
	p := levels.PlayPolicy{Kind: levels.PolicyElo, TargetElo: 3400, TimeMs: 2000}
	if err := Configure(sess, p); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"UCI_LimitStrength=true", // the toggle must precede UCI_Elo
		"UCI_Elo=3190",
		"MultiPV=1",
	}
	for i := range want {
		if sess.options[i] != want[i] {
			t.Errorf("option %d = %s, want %s", i, sess.options[i], want[i])
		}
	}

	// a low target is transmitted as-is, never raised
	sess = &optionRecorder{}
	p.TargetElo = 1400
	_ = Configure(sess, p)
	if sess.options[1] != "UCI_Elo=1400" {
		t.Errorf("low elo clamped: %v", sess.options)
	}
}

func TestSearchBounds(t *testing.T) {
	p := mistakePolicy(0.5, 0.3, 0.15, 0.05)
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		prm := SearchBounds(p, rnd)
		if prm.MaxDepth != p.DepthCap {
			t.Fatalf("depth = %d, want %d", prm.MaxDepth, p.DepthCap)
		}
		if prm.MaxTimeMs < int64(p.TimeMinMs) || prm.MaxTimeMs > int64(p.TimeMaxMs) {
			t.Fatalf("movetime %d outside [%d, %d]", prm.MaxTimeMs, p.TimeMinMs, p.TimeMaxMs)
		}
	}

	elo := levels.PlayPolicy{Kind: levels.PolicyElo, TargetElo: 1500, TimeMs: 2500}
	prm := SearchBounds(elo, rnd)
	if prm.MaxDepth != 0 || prm.MaxTimeMs != 2500 {
		t.Errorf("elo bounds = %+v", prm)
	}
}

func TestThinkingDelay(t *testing.T) {
	p := mistakePolicy(0.5, 0.3, 0.15, 0.05)
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		d := ThinkingDelay(p, rnd)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("mistake delay %v outside [500ms, 1500ms]", d)
		}
	}
	elo := levels.PlayPolicy{Kind: levels.PolicyElo, TargetElo: 1500, TimeMs: 2500}
	if d := ThinkingDelay(elo, rnd); d != 200*time.Millisecond {
		t.Errorf("elo delay = %v, want 200ms", d)
	}
}
