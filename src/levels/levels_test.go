package levels

import "testing"

func TestTableInvariants(t *testing.T) {
	if len(Table) != 20 {
		t.Fatalf("table size = %d, want 20", len(Table))
	}
	for i, p := range Table {
		if p.Level != i+1 {
			t.Errorf("entry %d has level %d", i, p.Level)
		}
		if p.DisplayName == "" || p.Description == "" {
			t.Errorf("level %d missing names", p.Level)
		}
		if p.Play.Kind == PolicyMistake {
			for _, prob := range []float64{p.Play.BestProb, p.Play.SecondProb, p.Play.ThirdProb, p.Play.RandomProb} {
				if prob < 0 || prob > 1 {
					t.Errorf("level %d probability %v out of range", p.Level, prob)
				}
			}
			if p.Play.TimeMinMs > p.Play.TimeMaxMs {
				t.Errorf("level %d time window inverted", p.Level)
			}
			if p.Play.DepthCap < 1 || p.Play.MultiPV < 1 {
				t.Errorf("level %d bad depth/multipv", p.Level)
			}
		} else {
			if p.Play.TargetElo <= 0 || p.Play.TimeMs <= 0 {
				t.Errorf("level %d bad elo policy", p.Level)
			}
		}
	}
}

func TestProfileOfClamps(t *testing.T) {
	if got := ProfileOf(0).Level; got != 1 {
		t.Errorf("ProfileOf(0).Level = %d, want 1", got)
	}
	if got := ProfileOf(-5).Level; got != 1 {
		t.Errorf("ProfileOf(-5).Level = %d, want 1", got)
	}
	if got := ProfileOf(99).Level; got != 20 {
		t.Errorf("ProfileOf(99).Level = %d, want 20", got)
	}
	if got := ProfileOf(7).Level; got != 7 {
		t.Errorf("ProfileOf(7).Level = %d, want 7", got)
	}
}

func TestLevelForRating(t *testing.T) {
	cases := []struct {
		rating int
		level  int
	}{
		{-100, 1},
		{0, 1},
		{MinRating, 1},
		{1025, 10}, // midpoint of [50, 2000]
		{MaxRating, 20},
		{5000, 20},
	}
	for _, c := range cases {
		if got := LevelForRating(c.rating); got != c.level {
			t.Errorf("LevelForRating(%d) = %d, want %d", c.rating, got, c.level)
		}
	}
}

func TestLevelForRatingMonotonic(t *testing.T) {
	prev := 0
	for r := -50; r <= 2200; r += 10 {
		lvl := LevelForRating(r)
		if lvl < prev {
			t.Fatalf("level dropped from %d to %d at rating %d", prev, lvl, r)
		}
		if lvl < 1 || lvl > len(Table) {
			t.Fatalf("level %d out of range at rating %d", lvl, r)
		}
		prev = lvl
	}
}
