package coach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"chesscoach/src/engine"
	"chesscoach/src/logx"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type fakeSession struct {
	options   []string
	positions []string
	script    func(h *engine.Search)
}

func (f *fakeSession) Init() error { return nil }
func (f *fakeSession) SetOption(name string, value interface{}) error {
	f.options = append(f.options, fmt.Sprintf("%s=%v", name, value))
	return nil
}
func (f *fakeSession) SetPositionFEN(fen string) error {
	f.positions = append(f.positions, fen)
	return nil
}
func (f *fakeSession) Go(prm engine.SearchParams) (*engine.Search, error) {
	h := engine.NewSearch()
	f.script(h)
	return h, nil
}
func (f *fakeSession) Stop() error { return nil }
func (f *fakeSession) Close()      {}

func TestGetAIMoveEloLevel(t *testing.T) {
	sess := &fakeSession{script: func(h *engine.Search) {
		h.PostInfo(engine.InfoEvent{MultiPV: 1, ScoreCP: 20, PV: []string{"e2e4"}})
		h.Finish("e2e4")
	}}
	c := New(logx.NewNop(), sess)

	var got string
	err := c.GetAIMove(context.Background(), startFEN, 13, func(move string) { got = move })
	if err != nil {
		t.Fatal(err)
	}
	if got != "e2e4" {
		t.Errorf("move = %q, want engine best", got)
	}

	want := []string{"UCI_LimitStrength=true", "UCI_Elo=1400", "MultiPV=1"}
	if len(sess.options) != len(want) {
		t.Fatalf("options = %v", sess.options)
	}
	for i := range want {
		if sess.options[i] != want[i] {
			t.Errorf("option %d = %s, want %s", i, sess.options[i], want[i])
		}
	}
	if len(sess.positions) != 1 || sess.positions[0] != startFEN {
		t.Errorf("positions = %v", sess.positions)
	}
}

func TestGetAIMoveMistakeLevelPlaysLegalMove(t *testing.T) {
	sess := &fakeSession{script: func(h *engine.Search) {
		h.Finish("e2e4")
	}}
	c := New(logx.NewNop(), sess)

	var got string
	err := c.GetAIMove(context.Background(), startFEN, 1, func(move string) { got = move })
	if err != nil {
		t.Fatal(err)
	}
	// level 1 may swap in any legal move; it must still be a legal token
	if len(got) < 4 {
		t.Fatalf("move = %q", got)
	}
	if sess.options[0] != "UCI_LimitStrength=false" {
		t.Errorf("options = %v", sess.options)
	}
	if sess.options[1] != "MultiPV=12" {
		t.Errorf("options = %v", sess.options)
	}
}

func TestGetAIMoveNoLegalMove(t *testing.T) {
	sess := &fakeSession{script: func(h *engine.Search) {
		h.Finish("") // bestmove (none)
	}}
	c := New(logx.NewNop(), sess)

	called := false
	err := c.GetAIMove(context.Background(), startFEN, 13, func(string) { called = true })
	if !errors.Is(err, engine.ErrNoLegalMove) {
		t.Errorf("err = %v, want ErrNoLegalMove", err)
	}
	if called {
		t.Error("onMove invoked without a move")
	}
}

func TestGetAIMoveSurfacesCrash(t *testing.T) {
	sess := &fakeSession{script: func(h *engine.Search) {
		h.Fail(engine.ErrEngineCrashed)
	}}
	c := New(logx.NewNop(), sess)

	err := c.GetAIMove(context.Background(), startFEN, 13, func(string) {})
	if !errors.Is(err, engine.ErrEngineCrashed) {
		t.Errorf("err = %v, want ErrEngineCrashed", err)
	}
}

func TestGetAIMoveForRating(t *testing.T) {
	sess := &fakeSession{script: func(h *engine.Search) {
		h.Finish("e2e4")
	}}
	c := New(logx.NewNop(), sess)

	// rating 2000 maps to the top level, an elo policy
	err := c.GetAIMoveForRating(context.Background(), startFEN, 2000, func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	if sess.options[0] != "UCI_LimitStrength=true" || sess.options[1] != "UCI_Elo=2100" {
		t.Errorf("options = %v", sess.options)
	}
}
