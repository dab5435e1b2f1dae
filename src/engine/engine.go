package engine

import (
	"errors"
	"time"
)

var (
	// ErrEngineStartup: process failed to launch or never finished the
	// handshake. Fatal for the session.
	ErrEngineStartup = errors.New("engine startup failed")
	// ErrEngineProtocol: the engine answered in a way the current search
	// cannot use. The session stays usable.
	ErrEngineProtocol = errors.New("engine protocol error")
	// ErrEngineCrashed: the process died; the session is dead and must be
	// recreated by the caller.
	ErrEngineCrashed = errors.New("engine process terminated")
	// ErrConcurrentSearch: caller issued a second search before the first
	// finished. Contract violation, never queued.
	ErrConcurrentSearch = errors.New("search already running")
	// ErrNoLegalMove: the engine reported bestmove (none); the position is
	// already checkmate or stalemate.
	ErrNoLegalMove = errors.New("no legal move in position")
)

const (
	UCIHandshakeTimeout = 5 * time.Second // uci / isready
	StopTimeout         = 5 * time.Second // grace for quit before the process is killed
)

type SearchParams struct {
	MaxDepth  int   // 0 = no depth bound
	MaxTimeMs int64 // 0 = no time bound
	Infinite  bool  // search until Stop()
}

// Budget is the outer guard against a hung engine: twice the requested
// time bound, or a flat ceiling for depth-only searches.
func (p SearchParams) Budget() time.Duration {
	if p.Infinite {
		return 0
	}
	if p.MaxTimeMs > 0 {
		return 2 * time.Duration(p.MaxTimeMs) * time.Millisecond
	}
	return 2 * time.Minute
}

// InfoEvent is one parsed "info ... pv ..." line.
type InfoEvent struct {
	Depth   int
	MultiPV int // 1-based, 1 when the engine omits the field
	ScoreCP int
	Mate    int // moves to mate, side-to-move relative
	HasMate bool
	PV      []string // UCI tokens, bounded preview
}

// Session drives one engine process. At most one search may be in flight;
// calls must be serialized by the owner.
type Session interface {
	Init() error
	SetOption(name string, value interface{}) error
	SetPositionFEN(fen string) error
	Go(prm SearchParams) (*Search, error)
	Stop() error
	Close()
}

// Search routes the streamed output of a single go-command to its one
// consumer. The session is the only writer; events never leak across
// searches since every Go call gets a fresh Search.
type Search struct {
	infos chan InfoEvent
	done  chan struct{}
	best  string
	err   error
}

func NewSearch() *Search {
	return &Search{
		infos: make(chan InfoEvent, 256),
		done:  make(chan struct{}),
	}
}

func (s *Search) Infos() <-chan InfoEvent { return s.infos }
func (s *Search) Done() <-chan struct{}   { return s.done }

// PostInfo delivers one info event, dropping it if the consumer lags.
// Info lines are redundant snapshots; the terminal bestmove is never dropped.
func (s *Search) PostInfo(ev InfoEvent) bool {
	select {
	case s.infos <- ev:
		return true
	default:
		return false
	}
}

// Finish completes the search. best == "" means bestmove (none).
func (s *Search) Finish(best string) {
	s.best = best
	close(s.done)
}

func (s *Search) Fail(err error) {
	s.err = err
	close(s.done)
}

// Best is valid once Done() is closed.
func (s *Search) Best() (string, error) {
	return s.best, s.err
}

// DrainInfos empties whatever info events are still buffered. Called after
// Done() closes, when the session has stopped writing.
func (s *Search) DrainInfos() []InfoEvent {
	var evs []InfoEvent
	for {
		select {
		case ev := <-s.infos:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}
