// Package main implements the interactive terminal trainer. It loads a
// puzzle set from a JSON file and plays it locally, with progress kept
// in memory or in a SQLite database.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/storage"
	"chesstrainer/internal/training"

	"github.com/chzyer/readline"
)

// ANSI colors for the terminal display
const (
	reset   = "\033[0m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

func main() {
	var (
		puzzlePath = flag.String("puzzles", "", "Path to the puzzle set JSON file (required)")
		collection = flag.String("collection", "practice", "Collection key for progress tracking")
		dbPath     = flag.String("db", "", "SQLite database for persistent progress (in-memory if empty)")
		delayMs    = flag.Int("reply-delay", 500, "Opponent reply delay in milliseconds")
	)
	flag.Parse()

	if *puzzlePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: trainer -puzzles <file.json> [-collection key] [-db file] [-reply-delay ms]")
		os.Exit(1)
	}

	raw, err := loadPuzzles(*puzzlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sFailed to load puzzles: %v%s\n", red, err, reset)
		os.Exit(1)
	}

	store, cleanup, err := openProgress(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sFailed to open progress store: %v%s\n", red, err, reset)
		os.Exit(1)
	}
	defer cleanup()

	set, err := puzzle.BuildSet(store, core.CollectionKey(*collection), raw)
	if err != nil {
		var allSolved *puzzle.AllSolvedError
		if errors.As(err, &allSolved) {
			fmt.Printf("%sAll %d puzzles already solved. Use 'trainer-server db progress -reset' or -db '' to start over.%s\n",
				yellow, allSolved.Count, reset)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%sFailed to build puzzle set: %v%s\n", red, err, reset)
		os.Exit(1)
	}

	onReply := func(r training.Reply) {
		fmt.Printf("\n%sOpponent plays %s%s\n", magenta, r.SAN, reset)
	}

	trainer := training.NewTrainer(set, store, time.Duration(*delayMs)*time.Millisecond, onReply)
	defer trainer.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cyan + "trainer> " + reset,
		HistoryFile:     ".trainer_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", red, err, reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sPuzzle Trainer%s\n", cyan, reset)
	fmt.Printf("%d puzzles loaded from %s\n", trainer.Len(), *puzzlePath)
	fmt.Println("Type 'help' for commands")
	showPuzzle(trainer)

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		execute(trainer, line)
	}
}

// loadPuzzles reads a JSON array of puzzles, or an object holding one
// under a "puzzles" field.
func loadPuzzles(path string) ([]puzzle.Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []puzzle.Puzzle
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Puzzles []puzzle.Puzzle `json:"puzzles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("not a puzzle list: %w", err)
	}
	return wrapped.Puzzles, nil
}

func openProgress(dbPath string) (progress.Store, func(), error) {
	if dbPath == "" {
		return progress.NewMemoryStore(), func() {}, nil
	}

	store, err := storage.NewStore(dbPath, false)
	if err != nil {
		return nil, nil, err
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return nil, nil, err
	}
	return storage.NewProgressStore(store), func() { store.Close() }, nil
}

func execute(t *training.Trainer, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		printHelp()
	case "board", "b":
		showPuzzle(t)
	case "next", "n":
		if !t.Next() {
			fmt.Printf("%sAlready at the last puzzle%s\n", yellow, reset)
			return
		}
		showPuzzle(t)
	case "prev", "p":
		if !t.Previous() {
			fmt.Printf("%sAlready at the first puzzle%s\n", yellow, reset)
			return
		}
		showPuzzle(t)
	case "reveal", "r":
		pv := t.Session().Reveal()
		if len(pv) == 0 {
			fmt.Printf("%sNothing left to reveal%s\n", yellow, reset)
			return
		}
		fmt.Printf("%sSolution: %s%s\n", yellow, strings.Join(pv, " "), reset)
	case "stats", "s":
		showStats(t)
	case "move", "m":
		if len(args) != 1 {
			fmt.Printf("%sUsage: move <from><to>[promotion], e.g. move e2e4%s\n", red, reset)
			return
		}
		submit(t, args[0])
	default:
		// Bare coordinate input is treated as a move
		if board.IsEncodedMove(cmd) && len(args) == 0 {
			submit(t, cmd)
			return
		}
		fmt.Printf("%sUnknown command: %s (try 'help')%s\n", red, cmd, reset)
	}
}

func submit(t *training.Trainer, move string) {
	outcome, err := t.Session().SubmitMove(move)
	if err != nil {
		fmt.Printf("%s%v%s\n", red, err, reset)
		return
	}

	switch outcome.Status {
	case training.StatusIllegal:
		fmt.Printf("%sIllegal move: %s%s\n", red, move, reset)
	case training.StatusIncorrect:
		fmt.Printf("%sNot the best move: %s%s\n", red, outcome.SAN, reset)
	case training.StatusCorrect:
		fmt.Printf("%sCorrect: %s%s\n", green, outcome.SAN, reset)
	case training.StatusSolved:
		fmt.Printf("%sSolved with %s!%s\n", green, outcome.SAN, reset)
	}
}

func showPuzzle(t *training.Trainer) {
	p := t.Session().Puzzle()
	snap := t.Session().Snapshot()

	fmt.Printf("\n%sPuzzle %d/%d%s  [%s, %s to move]\n",
		cyan, t.Index()+1, t.Len(), reset, p.Difficulty, p.PlayerColor)
	if p.Meta.Opponent != "" {
		fmt.Printf("vs %s", p.Meta.Opponent)
		if p.Meta.Date != "" {
			fmt.Printf(" (%s)", p.Meta.Date)
		}
		fmt.Println()
	}
	if p.Meta.OpeningName != "" {
		fmt.Printf("Opening: %s\n", p.Meta.OpeningName)
	}

	fmt.Println(board.ToASCII(snap.FEN, p.PlayerColor == core.ColorBlack))
	if snap.Solved {
		fmt.Printf("%sAlready solved%s\n", green, reset)
	}
}

func showStats(t *training.Trainer) {
	stats, err := t.Stats()
	if err != nil {
		fmt.Printf("%sFailed to read stats: %v%s\n", red, err, reset)
		return
	}

	fmt.Printf("Solved: %d  Attempted: %d\n", stats.TotalSolved, stats.TotalAttempted)
	for _, d := range []core.Difficulty{core.DifficultyEasy, core.DifficultyMedium, core.DifficultyHard} {
		fmt.Printf("  %-6s %d\n", d, stats.ByDifficulty[d])
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  move <uci> (m)  submit a move, e.g. 'move e2e4' or just 'e2e4'")
	fmt.Println("  board (b)       redraw the current puzzle")
	fmt.Println("  reveal (r)      show the remaining solution")
	fmt.Println("  next (n)        go to the next puzzle")
	fmt.Println("  prev (p)        go to the previous puzzle")
	fmt.Println("  stats (s)       show progress for this collection")
	fmt.Println("  exit (x)        quit")
}
