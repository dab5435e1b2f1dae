package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/notnil/chess"
	"github.com/urfave/cli/v3"

	"chesscoach/src/analysis"
	"chesscoach/src/bootstrap"
	"chesscoach/src/coach"
	"chesscoach/src/engine"
	"chesscoach/src/engine/uci"
	"chesscoach/src/levels"
	"chesscoach/src/logx"
	"chesscoach/src/rating"
	"chesscoach/src/server"
	"chesscoach/src/store"
)

const logfile = "chesscoach.log"

func getLogger(file *os.File, c *cli.Command) *logx.Logx {
	l := logx.NewLogx(
		logx.GetLoggerLevelByString(c.String("log-level")),
		c.Bool("debug"),
		c.Bool("console"),
	)
	l.InitLogger(file)
	return l
}

func newCoach(log logx.Logger, enginePath string) (*coach.Coach, error) {
	ch := coach.New(log, uci.NewSession(log, enginePath))
	if err := ch.Init(); err != nil {
		return nil, err
	}
	return ch, nil
}

func evalString(evalCp int, mateIn *int) string {
	if mateIn != nil {
		return fmt.Sprintf("#%d", *mateIn)
	}
	return fmt.Sprintf("%+.2f", float64(evalCp)/100)
}

func runAnalyze(ctx context.Context, c *cli.Command, log *logx.Logx) error {
	fen := c.String("fen")
	if fen == "" {
		fen = chess.NewGame().FEN()
	}

	ch, err := newCoach(log, c.String("engine"))
	if err != nil {
		return err
	}
	defer ch.Close()

	res, err := ch.AnalyzePosition(ctx, fen, int(c.Int("depth")), func(u analysis.Update) {
		fmt.Printf("\r%-60s", fmt.Sprintf("eval %s (%d lines)", evalString(u.Eval, u.MateIn), len(u.Lines)))
	})
	if err != nil {
		return err
	}

	fmt.Printf("\reval %s", evalString(res.Eval, res.MateIn))
	if res.MateFor != "" {
		fmt.Printf(" (mate for %s)", res.MateFor)
	}
	fmt.Println()
	for i, line := range res.Lines {
		fmt.Printf("  %d. [%s] %s\n", i+1, evalString(line.Eval, nil), strings.Join(line.Moves, " "))
	}
	return nil
}

func runPlay(ctx context.Context, c *cli.Command, log *logx.Logx) error {
	level := int(c.Int("level"))
	playerWhite := !c.Bool("black")

	var opts []func(*chess.Game)
	if fen := c.String("fen"); fen != "" {
		opt, err := chess.FEN(fen)
		if err != nil {
			return fmt.Errorf("bad FEN: %w", err)
		}
		opts = append(opts, opt)
	}
	game := chess.NewGame(opts...)

	ch, err := newCoach(log, c.String("engine"))
	if err != nil {
		return err
	}
	defer ch.Close()

	profile := levels.ProfileOf(level)
	fmt.Printf("playing against %s (%s)\n", profile.DisplayName, profile.Description)

	var sanMoves []string
	in := bufio.NewScanner(os.Stdin)
	for game.Outcome() == chess.NoOutcome {
		fmt.Println(game.Position().Board().Draw())
		if (game.Position().Turn() == chess.White) == playerWhite {
			fmt.Print("your move (SAN, or quit): ")
			if !in.Scan() {
				return nil
			}
			text := strings.TrimSpace(in.Text())
			if text == "quit" {
				return nil
			}
			if err := game.MoveStr(text); err != nil {
				fmt.Printf("illegal move %q\n", text)
				continue
			}
			sanMoves = append(sanMoves, text)
		} else {
			err := ch.GetAIMove(ctx, game.FEN(), level, func(move string) {
				pos := game.Position()
				m, derr := chess.UCINotation{}.Decode(pos, move)
				if derr != nil {
					log.Errorf("engine move %q does not parse: %v", move, derr)
					return
				}
				san := chess.AlgebraicNotation{}.Encode(pos, m)
				if merr := game.Move(m); merr != nil {
					log.Errorf("engine move %s is illegal: %v", san, merr)
					return
				}
				sanMoves = append(sanMoves, san)
				fmt.Printf("%s plays %s\n", profile.DisplayName, san)
			})
			if err != nil {
				if errors.Is(err, engine.ErrNoLegalMove) {
					break
				}
				return err
			}
		}
	}

	fmt.Println(game.Position().Board().Draw())
	if game.Outcome() == chess.NoOutcome {
		return nil
	}
	fmt.Printf("game over: %s by %s\n", game.Outcome(), game.Method())

	var res rating.Outcome
	switch {
	case game.Outcome() == chess.Draw:
		res = rating.Draw
	case (game.Outcome() == chess.WhiteWon) == playerWhite:
		res = rating.Win
	default:
		res = rating.Loss
	}

	if addr := c.String("redis"); addr != "" {
		st, err := store.NewRedisStore(addr, log)
		if err != nil {
			return err
		}
		defer st.Close()
		player := c.String("player")
		s, err := st.Stats(ctx, player)
		if err != nil {
			return err
		}
		next := rating.ApplyOutcome(s, res)
		if err := st.SaveStats(ctx, player, next); err != nil {
			return err
		}
		if _, err := st.SaveGame(ctx, player, store.GameRecord{
			Level:    level,
			Result:   res,
			Moves:    sanMoves,
			FinalFEN: game.FEN(),
		}); err != nil {
			log.Errorf("save game: %v", err)
		}
		fmt.Printf("rating: %d -> %d (next level: %d)\n",
			s.Rating, next.Rating, levels.LevelForRating(next.Rating))
	}
	return nil
}

func runServe(ctx context.Context, c *cli.Command, log *logx.Logx) error {
	cfg, err := bootstrap.Setup(c.String("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	st, err := store.NewRedisStore(cfg.RedisUrl, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ch, err := newCoach(log, cfg.EnginePath)
	if err != nil {
		return err
	}
	defer ch.Close()

	h := server.NewHandler(ch, st, cfg.AnalysisDepth, log)
	addr := ":" + cfg.ServerPort
	log.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, h.Router())
}

func main() {
	logFlags := []cli.Flag{
		&cli.StringFlag{Name: "log-level", Usage: "logger level", Value: "info"},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "development encoder"},
		&cli.BoolFlag{Name: "console", Aliases: []string{"c"}, Usage: "log to stdout instead of file"},
	}
	engineFlag := &cli.StringFlag{Name: "engine", Usage: "path to a UCI engine binary", Value: "stockfish"}

	withLogger := func(fn func(context.Context, *cli.Command, *logx.Logx) error) cli.ActionFunc {
		return func(ctx context.Context, c *cli.Command) error {
			file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("error open logfile: %v\n", err)
				return nil
			}
			defer file.Close()
			return fn(ctx, c, getLogger(file, c))
		}
	}

	if err := (&cli.Command{
		Name:  "chesscoach",
		Usage: "leveled chess bot and analysis companion",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "multi-line analysis of a position",
				Flags: append([]cli.Flag{
					engineFlag,
					&cli.StringFlag{Name: "fen", Usage: "position FEN (default: start position)"},
					&cli.IntFlag{Name: "depth", Usage: "search depth", Value: 15},
				}, logFlags...),
				Action: withLogger(runAnalyze),
			},
			{
				Name:  "play",
				Usage: "play against a leveled bot in the terminal",
				Flags: append([]cli.Flag{
					engineFlag,
					&cli.StringFlag{Name: "fen", Usage: "starting position FEN"},
					&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Usage: "bot level 1..20", Value: 5},
					&cli.BoolFlag{Name: "black", Usage: "play the black pieces"},
					&cli.StringFlag{Name: "redis", Usage: "redis address for rating tracking"},
					&cli.StringFlag{Name: "player", Usage: "player id for rating tracking", Value: "local"},
				}, logFlags...),
				Action: withLogger(runPlay),
			},
			{
				Name:  "serve",
				Usage: "HTTP/websocket companion server",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "path to config file", Value: ".env"},
				}, logFlags...),
				Action: withLogger(runServe),
			},
		},
	}).Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
	}
}
