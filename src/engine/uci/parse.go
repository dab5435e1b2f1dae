package uci

import (
	"regexp"
	"strconv"
	"strings"

	"chesscoach/src/engine"
)

type EventKind int

const (
	EventNone EventKind = iota
	EventReadyAck
	EventOptionAck
	EventInfo
	EventBestMove
)

type Event struct {
	Kind  EventKind
	Token string // ack token or bestmove; "" for bestmove (none)
	Info  engine.InfoEvent
}

// The UI only previews a short line, so anything past 6 plies is noise.
const maxPVTokens = 6

var moveTokenRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ParseLine converts one raw engine output line into at most one event.
// Lines that match nothing are ignored; most engine chatter is irrelevant.
func ParseLine(line string) Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}
	}

	switch {
	case line == "uciok" || line == "readyok":
		return Event{Kind: EventReadyAck, Token: line}
	case strings.HasPrefix(line, "option name "):
		return Event{Kind: EventOptionAck, Token: line}
	case strings.HasPrefix(line, "bestmove"):
		return parseBestMove(line)
	case strings.HasPrefix(line, "info ") && strings.Contains(line, " pv "):
		return parseInfo(line)
	}
	return Event{}
}

func parseBestMove(line string) Event {
	f := strings.Fields(line)
	if len(f) < 2 {
		return Event{}
	}
	token := f[1]
	if token == "(none)" || token == "none" {
		token = ""
	}
	return Event{Kind: EventBestMove, Token: token}
}

func parseInfo(line string) Event {
	info := engine.InfoEvent{MultiPV: 1}
	fld := strings.Fields(line)
	n := len(fld)
	for i := 0; i < n; i++ {
		switch fld[i] {
		case "depth":
			if i+1 < n {
				info.Depth, _ = strconv.Atoi(fld[i+1])
				i++
			}
		case "multipv":
			if i+1 < n {
				if v, err := strconv.Atoi(fld[i+1]); err == nil && v >= 1 {
					info.MultiPV = v
				}
				i++
			}
		case "score":
			if i+2 < n {
				switch fld[i+1] {
				case "cp":
					if v, err := strconv.Atoi(fld[i+2]); err == nil {
						info.ScoreCP = v
					}
				case "mate":
					if v, err := strconv.Atoi(fld[i+2]); err == nil {
						info.Mate = v
						info.HasMate = true
					}
				}
				i += 2
			}
		case "pv":
			// pv is always the last tag; malformed tokens are dropped,
			// not fatal.
			for j := i + 1; j < n && len(info.PV) < maxPVTokens; j++ {
				if moveTokenRe.MatchString(fld[j]) {
					info.PV = append(info.PV, fld[j])
				}
			}
			i = n
		}
	}
	if len(info.PV) == 0 {
		return Event{}
	}
	return Event{Kind: EventInfo, Info: info}
}
