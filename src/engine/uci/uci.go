package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"chesscoach/src/engine"
	"chesscoach/src/logx"
)

// Session runs one UCI engine process over stdin/stdout pipes. Parsed
// search output is routed to the Search handle of the in-flight go-command,
// so no dispatch state is ever swapped between calls.
type Session struct {
	// init
	path string
	args []string

	// process
	cmd *exec.Cmd
	in  io.WriteCloser
	out io.ReadCloser

	// read stdout
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// runtime
	mu    sync.Mutex
	cur   *engine.Search
	dead  bool
	lines chan string // raw lines for handshake waiters
	log   logx.Logger

	handshakeTimeout time.Duration
}

var _ engine.Session = (*Session)(nil)

// NewSession prepares a session; the process starts on Init().
func NewSession(log logx.Logger, enginePath string, engineArgs ...string) *Session {
	return &Session{
		path:             enginePath,
		args:             engineArgs,
		log:              log,
		handshakeTimeout: engine.UCIHandshakeTimeout,
	}
}

// Init launches the process and performs the uci/isready handshake.
func (e *Session) Init() error {
	if e.path == "" {
		return fmt.Errorf("%w: empty engine path", engine.ErrEngineStartup)
	}

	cmd := exec.Command(e.path, e.args...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %v", engine.ErrEngineStartup, err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", engine.ErrEngineStartup, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: exec %s: %v", engine.ErrEngineStartup, e.path, err)
	}

	e.cmd = cmd
	e.in = in
	e.out = out
	e.lines = make(chan string, 256)

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.stdoutLoop(e.ctx)

	e.log.Infof("engine process started: %s (pid %d)", e.path, cmd.Process.Pid)

	if err := e.exec("uci"); err != nil {
		e.Close()
		return fmt.Errorf("%w: %v", engine.ErrEngineStartup, err)
	}
	if err := e.waitAck("uciok", e.handshakeTimeout); err != nil {
		e.Close()
		return fmt.Errorf("%w: %v", engine.ErrEngineStartup, err)
	}
	if err := e.ready(); err != nil {
		e.Close()
		return fmt.Errorf("%w: %v", engine.ErrEngineStartup, err)
	}
	return nil
}

func (e *Session) exec(cmd string) error {
	if e.in == nil {
		return fmt.Errorf("stdin not available")
	}
	e.log.Debugf("GUI: %s", cmd)
	_, err := io.WriteString(e.in, cmd+"\n")
	return err
}

func (e *Session) ready() error {
	if err := e.exec("isready"); err != nil {
		return err
	}
	return e.waitAck("readyok", e.handshakeTimeout)
}

// SetOption emits a setoption command. Order matters only for dependent
// pairs (LimitStrength before UCI_Elo), which is the caller's concern.
func (e *Session) SetOption(name string, value interface{}) error {
	return e.exec(fmt.Sprintf("setoption name %s value %v", name, value))
}

// SetPositionFEN loads a position and waits until the engine settles.
func (e *Session) SetPositionFEN(fen string) error {
	e.log.Debugf("load position FEN: %s", fen)
	if err := e.exec("ucinewgame"); err != nil {
		return err
	}
	if err := e.exec(fmt.Sprintf("position fen %s", fen)); err != nil {
		return err
	}
	return e.ready()
}

// Go issues a search and returns its routing handle. A second Go while one
// search is pending is a caller error, never queued.
func (e *Session) Go(prm engine.SearchParams) (*engine.Search, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil || e.dead {
		return nil, engine.ErrEngineCrashed
	}
	if e.cur != nil {
		return nil, engine.ErrConcurrentSearch
	}

	var b strings.Builder
	b.WriteString("go")
	if prm.Infinite {
		b.WriteString(" infinite")
	} else {
		if prm.MaxDepth > 0 {
			fmt.Fprintf(&b, " depth %d", prm.MaxDepth)
		}
		if prm.MaxTimeMs > 0 {
			fmt.Fprintf(&b, " movetime %d", prm.MaxTimeMs)
		}
	}

	s := engine.NewSearch()
	e.cur = s
	e.log.Infof("start search: %s", b.String())
	if err := e.exec(b.String()); err != nil {
		e.cur = nil
		return nil, fmt.Errorf("%w: %v", engine.ErrEngineProtocol, err)
	}
	return s, nil
}

// Stop asks the engine to cut the current search short. The search still
// terminates through its own bestmove.
func (e *Session) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return nil
	}
	e.log.Debug("stop search")
	return e.exec("stop")
}

// Close terminates the process, killing it if quit is not honored. A search
// still in flight is failed so its consumer never waits out the budget guard.
func (e *Session) Close() {
	if e.cmd == nil {
		return
	}
	e.mu.Lock()
	_ = e.exec("quit")
	e.cancel()
	e.dead = true
	if e.cur != nil {
		e.cur.Fail(engine.ErrEngineCrashed)
		e.cur = nil
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(engine.StopTimeout):
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
		e.wg.Wait()
	}
	_ = e.cmd.Wait()
	e.log.Info("engine process terminated")
}

func (e *Session) waitAck(token string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line := <-e.lines:
			if strings.HasPrefix(line, token) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for %s", token)
		case <-e.ctx.Done():
			return fmt.Errorf("session closed waiting for %s", token)
		}
	}
}

func (e *Session) stdoutLoop(ctx context.Context) {
	defer e.wg.Done()
	scr := bufio.NewScanner(e.out)
	for scr.Scan() {
		line := strings.TrimSpace(scr.Text())
		e.log.Debugf("ENGINE: %s", line)

		select {
		case e.lines <- line:
		default:
			// handshake waiters lag only during search spam; safe to drop
		}

		switch ev := ParseLine(line); ev.Kind {
		case EventInfo:
			e.routeInfo(ev.Info)
		case EventBestMove:
			e.routeBest(ev.Token)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
	// stdout closed: the process is gone
	e.mu.Lock()
	e.dead = true
	if e.cur != nil {
		e.cur.Fail(engine.ErrEngineCrashed)
		e.cur = nil
	}
	e.mu.Unlock()
}

func (e *Session) routeInfo(info engine.InfoEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return
	}
	if !e.cur.PostInfo(info) {
		e.log.Debugf("drop info event (consumer lags, multipv %d)", info.MultiPV)
	}
}

func (e *Session) routeBest(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		e.log.Debugf("discard stray bestmove %q", token)
		return
	}
	e.cur.Finish(token)
	e.cur = nil
}
