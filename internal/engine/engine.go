// FILE: internal/engine/engine.go

// Package engine wraps a UCI engine process for position analysis.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"chesstrainer/internal/board"
)

const DefaultPath = "stockfish"

// Analysis is the evaluation of a single position, reported from
// white's perspective.
type Analysis struct {
	Score              string   `json:"score"`   // "0.35" in pawns, or "M3"
	ScoreCP            int      `json:"scoreCp"` // centipawns, +-10000 for mate
	BestMove           string   `json:"bestMove"`
	PrincipalVariation []string `json:"principalVariation"` // up to 5 plies
	IsMate             bool     `json:"isMate"`
	MateIn             int      `json:"mateIn"`
	Depth              int      `json:"depth"`
}

type UCI struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	mu     sync.Mutex
}

// New starts a UCI engine process at path and completes the handshake
func New(path string) (*UCI, error) {
	if path == "" {
		path = DefaultPath
	}
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %v", err)
	}

	uci := &UCI{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewScanner(stdout),
	}

	if err := uci.initialize(); err != nil {
		uci.Close()
		return nil, err
	}

	return uci, nil
}

// SetSkillLevel sets the engine skill level (0-20)
func (u *UCI) SetSkillLevel(level int) {
	if level < 0 {
		level = 0
	} else if level > 20 {
		level = 20
	}
	u.sendCommand(fmt.Sprintf("setoption name Skill Level value %d", level))
}

func (u *UCI) initialize() error {
	u.sendCommand("uci")

	// Wait for uciok with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan bool)
	go func() {
		for u.stdout.Scan() {
			if u.stdout.Text() == "uciok" {
				done <- true
				return
			}
		}
		done <- false
	}()

	select {
	case success := <-done:
		if !success {
			return fmt.Errorf("engine closed unexpectedly")
		}
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for uciok")
	}

	u.sendCommand("isready")
	return u.waitReady()
}

func (u *UCI) waitReady() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error)
	go func() {
		for u.stdout.Scan() {
			if u.stdout.Text() == "readyok" {
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed unexpectedly")
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for readyok")
	}
}

func (u *UCI) sendCommand(cmd string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.stdin, cmd)
}

func (u *UCI) NewGame() {
	u.sendCommand("ucinewgame")
	u.sendCommand("isready")
	u.waitReady()
}

// Analyze evaluates a position to the given depth. Scores are
// normalized to white's perspective regardless of the side to move.
func (u *UCI) Analyze(fen string, depth int) (*Analysis, error) {
	turn, err := board.Turn(fen)
	if err != nil {
		return nil, err
	}

	u.sendCommand(fmt.Sprintf("position fen %s", fen))
	u.sendCommand(fmt.Sprintf("go depth %d", depth))

	result, err := u.collectSearch(30 * time.Second)
	if err != nil {
		return nil, err
	}

	return normalizeAnalysis(result, turn), nil
}

type searchResult struct {
	bestMove string
	scoreCP  int
	mateIn   int
	isMate   bool
	depth    int
	pv       []string
}

func (u *UCI) collectSearch(timeout time.Duration) (*searchResult, error) {
	result := &searchResult{}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error)
	go func() {
		for u.stdout.Scan() {
			line := u.stdout.Text()

			if strings.HasPrefix(line, "info ") {
				parseInfoLine(line, result)
			}

			if strings.HasPrefix(line, "bestmove ") {
				parts := strings.Fields(line)
				if len(parts) >= 2 {
					result.bestMove = parts[1]
				}
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed unexpectedly")
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for bestmove")
	}
}

func parseInfoLine(line string, result *searchResult) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			result.depth, _ = strconv.Atoi(fields[i+1])
		case "cp":
			result.scoreCP, _ = strconv.Atoi(fields[i+1])
			result.isMate = false
		case "mate":
			result.mateIn, _ = strconv.Atoi(fields[i+1])
			result.isMate = true
		case "pv":
			result.pv = append([]string(nil), fields[i+1:]...)
			return // pv runs to end of line
		}
	}
}

// normalizeAnalysis converts a raw side-to-move search result into
// white-perspective scores and trims the variation to 5 plies.
func normalizeAnalysis(r *searchResult, turn byte) *Analysis {
	a := &Analysis{
		BestMove: r.bestMove,
		IsMate:   r.isMate,
		Depth:    r.depth,
	}

	sign := 1
	if turn == 'b' {
		sign = -1
	}

	if r.isMate {
		mateIn := r.mateIn * sign
		a.MateIn = mateIn
		a.Score = fmt.Sprintf("M%d", abs(mateIn))
		if mateIn > 0 {
			a.ScoreCP = 10000
		} else {
			a.ScoreCP = -10000
		}
	} else {
		a.ScoreCP = r.scoreCP * sign
		a.Score = fmt.Sprintf("%.2f", float64(a.ScoreCP)/100)
	}

	pv := r.pv
	if len(pv) > 5 {
		pv = pv[:5]
	}
	a.PrincipalVariation = append([]string(nil), pv...)
	if a.BestMove == "" && len(pv) > 0 {
		a.BestMove = pv[0]
	}

	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (u *UCI) Close() error {
	u.sendCommand("quit")
	time.Sleep(100 * time.Millisecond)

	// Try graceful shutdown first
	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(1 * time.Second):
		// Force kill if doesn't exit gracefully
		return u.cmd.Process.Kill()
	}
}
