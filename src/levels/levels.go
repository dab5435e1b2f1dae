package levels

// PolicyKind tags the two shapes of PlayPolicy.
type PolicyKind int

const (
	// PolicyMistake plays full-strength search output through a
	// probabilistic mistake filter.
	PolicyMistake PolicyKind = iota
	// PolicyElo asks the engine to self-limit to a target rating.
	PolicyElo
)

// PlayPolicy describes how a bot level translates into engine behavior.
// Kind selects which field group is meaningful.
type PlayPolicy struct {
	Kind PolicyKind

	// mistake policy
	MultiPV    int
	BestProb   float64
	SecondProb float64
	ThirdProb  float64
	RandomProb float64
	DepthCap   int
	TimeMinMs  int
	TimeMaxMs  int

	// elo policy
	TargetElo int
	TimeMs    int
}

type Profile struct {
	Level       int
	Description string
	DisplayName string
	Play        PlayPolicy
}

const (
	MinRating = 50
	MaxRating = 2000
)

func mistake(multipv int, best, second, third, random float64, depth, tmin, tmax int) PlayPolicy {
	return PlayPolicy{
		Kind: PolicyMistake, MultiPV: multipv,
		BestProb: best, SecondProb: second, ThirdProb: third, RandomProb: random,
		DepthCap: depth, TimeMinMs: tmin, TimeMaxMs: tmax,
	}
}

func elo(target, timeMs int) PlayPolicy {
	return PlayPolicy{Kind: PolicyElo, TargetElo: target, TimeMs: timeMs}
}

// Levels 1-12: mistake injection; 13-20: engine-limited strength.
var Table = []Profile{
	{1, "Beginner I (~200 Elo)", "Chick", mistake(12, 0.30, 0.25, 0.25, 0.20, 2, 200, 400)},
	{2, "Beginner II (~300 Elo)", "Mouse", mistake(12, 0.40, 0.30, 0.20, 0.10, 2, 300, 500)},
	{3, "Beginner III (~400 Elo)", "Rabbit", mistake(12, 0.50, 0.30, 0.15, 0.05, 3, 400, 600)},
	{4, "Beginner IV (~500 Elo)", "Fox", mistake(12, 0.60, 0.25, 0.12, 0.03, 3, 500, 700)},
	{5, "Novice I (~600 Elo)", "Dog", mistake(10, 0.70, 0.20, 0.08, 0.02, 4, 600, 800)},
	{6, "Novice II (~700 Elo)", "Goat", mistake(10, 0.75, 0.18, 0.06, 0.01, 4, 700, 900)},
	{7, "Intermediate I (~800 Elo)", "Sheep", mistake(8, 0.80, 0.15, 0.04, 0.01, 5, 800, 1000)},
	{8, "Intermediate II (~900 Elo)", "Pig", mistake(8, 0.85, 0.12, 0.03, 0, 5, 900, 1100)},
	{9, "Intermediate III (~1000 Elo)", "Deer", mistake(8, 0.75, 0.22, 0.03, 0, 2, 400, 600)},
	{10, "Skilled I (~1100 Elo)", "Boar", mistake(6, 0.80, 0.18, 0.02, 0, 3, 450, 650)},
	{11, "Skilled II (~1200 Elo)", "Leopard", mistake(6, 0.85, 0.13, 0.02, 0, 3, 500, 700)},
	{12, "Advanced (~1300 Elo)", "Panther", mistake(6, 0.90, 0.09, 0.01, 0, 3, 550, 800)},
	{13, "Club Beginner (~1400 Elo)", "Tiger", elo(1400, 2000)},
	{14, "Club Novice (~1500 Elo)", "Lion", elo(1500, 2500)},
	{15, "Club Intermediate (~1600 Elo)", "Horse", elo(1600, 3000)},
	{16, "Strong Club (~1700 Elo)", "Buffalo", elo(1700, 3500)},
	{17, "Expert (~1800 Elo)", "Rhino", elo(1800, 4000)},
	{18, "Candidate Master (~1900 Elo)", "Hippo", elo(1900, 4500)},
	{19, "Master (~2000 Elo)", "Giraffe", elo(2000, 5000)},
	{20, "Strong Master (~2100+ Elo)", "Elephant", elo(2100, 6000)},
}

// ProfileOf returns the profile for a level, clamping out-of-range input.
func ProfileOf(level int) Profile {
	if level < 1 {
		level = 1
	}
	if level > len(Table) {
		level = len(Table)
	}
	return Table[level-1]
}

// LevelForRating maps a player rating onto the level table by linear
// interpolation over [MinRating, MaxRating]. Out-of-range ratings clamp
// to the first or last level.
func LevelForRating(rating int) int {
	frac := float64(rating-MinRating) / float64(MaxRating-MinRating)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return 1 + int(frac*float64(len(Table)-1))
}
