package uci

import (
	"reflect"
	"testing"
)

func TestParseAcks(t *testing.T) {
	for _, line := range []string{"uciok", "readyok"} {
		ev := ParseLine(line)
		if ev.Kind != EventReadyAck || ev.Token != line {
			t.Errorf("ParseLine(%q) = %+v", line, ev)
		}
	}
	ev := ParseLine("option name MultiPV type spin default 1 min 1 max 500")
	if ev.Kind != EventOptionAck {
		t.Errorf("option line: %+v", ev)
	}
}

func TestParseInfoLine(t *testing.T) {
	line := "info depth 10 seldepth 13 multipv 2 score cp -35 nodes 4242 nps 120000 time 35 pv e2e4 e7e5 g1f3"
	ev := ParseLine(line)
	if ev.Kind != EventInfo {
		t.Fatalf("kind = %v", ev.Kind)
	}
	if ev.Info.Depth != 10 || ev.Info.MultiPV != 2 || ev.Info.ScoreCP != -35 || ev.Info.HasMate {
		t.Errorf("info = %+v", ev.Info)
	}
	if want := []string{"e2e4", "e7e5", "g1f3"}; !reflect.DeepEqual(ev.Info.PV, want) {
		t.Errorf("pv = %v, want %v", ev.Info.PV, want)
	}
}

func TestParseInfoDefaultsMultiPV(t *testing.T) {
	ev := ParseLine("info depth 3 score cp 12 pv d2d4")
	if ev.Kind != EventInfo || ev.Info.MultiPV != 1 {
		t.Errorf("multipv default: %+v", ev)
	}
}

func TestParseMateScore(t *testing.T) {
	ev := ParseLine("info depth 5 multipv 1 score mate -2 pv h7h8q g8h8")
	if ev.Kind != EventInfo {
		t.Fatalf("kind = %v", ev.Kind)
	}
	if !ev.Info.HasMate || ev.Info.Mate != -2 {
		t.Errorf("mate = %+v", ev.Info)
	}
}

func TestParsePVFiltersMalformedTokens(t *testing.T) {
	ev := ParseLine("info depth 1 score cp 0 pv e2e4 bongcloud e7e5 0000 i9j9")
	if want := []string{"e2e4", "e7e5"}; !reflect.DeepEqual(ev.Info.PV, want) {
		t.Errorf("pv = %v, want %v", ev.Info.PV, want)
	}
}

func TestParsePVPreviewBounded(t *testing.T) {
	ev := ParseLine("info depth 9 score cp 1 pv e2e4 e7e5 g1f3 b8c6 f1b5 a7a6 b5a4 g8f6")
	if len(ev.Info.PV) != maxPVTokens {
		t.Errorf("pv length = %d, want %d", len(ev.Info.PV), maxPVTokens)
	}
}

func TestParsePromotionToken(t *testing.T) {
	ev := ParseLine("info depth 2 score mate 1 pv e7e8q")
	if len(ev.Info.PV) != 1 || ev.Info.PV[0] != "e7e8q" {
		t.Errorf("promotion pv = %v", ev.Info.PV)
	}
}

func TestParseBestMove(t *testing.T) {
	ev := ParseLine("bestmove e2e4 ponder e7e5")
	if ev.Kind != EventBestMove || ev.Token != "e2e4" {
		t.Errorf("bestmove = %+v", ev)
	}
	ev = ParseLine("bestmove (none)")
	if ev.Kind != EventBestMove || ev.Token != "" {
		t.Errorf("bestmove none = %+v", ev)
	}
}

func TestParseIgnoresNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"Stockfish 16 by the Stockfish developers (see AUTHORS file)",
		"info string NNUE evaluation using nn-5af11540bbfe.nnue enabled",
		"info depth 20 currmove e2e4 currmovenumber 1",
		"id name Stockfish 16",
	} {
		if ev := ParseLine(line); ev.Kind != EventNone {
			t.Errorf("ParseLine(%q) = %+v, want none", line, ev)
		}
	}
}
