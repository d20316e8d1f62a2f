// FILE: internal/engine/engine_test.go
package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestSetSkillLevelClampsAndSendsOption(t *testing.T) {
	var buf bytes.Buffer
	u := &UCI{stdin: nopWriteCloser{&buf}}

	u.SetSkillLevel(12)
	assert.Equal(t, "setoption name Skill Level value 12\n", buf.String())

	buf.Reset()
	u.SetSkillLevel(-3)
	assert.Equal(t, "setoption name Skill Level value 0\n", buf.String())

	buf.Reset()
	u.SetSkillLevel(99)
	assert.Equal(t, "setoption name Skill Level value 20\n", buf.String())
}

func TestParseInfoLine(t *testing.T) {
	var r searchResult
	parseInfoLine("info depth 18 seldepth 24 score cp 35 nodes 123456 pv e2e4 e7e5 g1f3 b8c6 f1b5 a7a6", &r)

	assert.Equal(t, 18, r.depth)
	assert.Equal(t, 35, r.scoreCP)
	assert.False(t, r.isMate)
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6"}, r.pv)
}

func TestParseInfoLineMate(t *testing.T) {
	var r searchResult
	parseInfoLine("info depth 12 score mate 3 pv d1h5 g6h5 f3g5", &r)

	assert.True(t, r.isMate)
	assert.Equal(t, 3, r.mateIn)
}

func TestNormalizeAnalysisWhiteToMove(t *testing.T) {
	a := normalizeAnalysis(&searchResult{
		bestMove: "e2e4",
		scoreCP:  35,
		depth:    18,
		pv:       []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6"},
	}, 'w')

	assert.Equal(t, "0.35", a.Score)
	assert.Equal(t, 35, a.ScoreCP)
	assert.Equal(t, "e2e4", a.BestMove)
	assert.Len(t, a.PrincipalVariation, 5)
}

func TestNormalizeAnalysisBlackPerspectiveFlip(t *testing.T) {
	// Engine scores are side-to-move; with black to move a positive
	// cp means black is better, so white-perspective is negative.
	a := normalizeAnalysis(&searchResult{bestMove: "e7e5", scoreCP: 80}, 'b')

	assert.Equal(t, -80, a.ScoreCP)
	assert.Equal(t, "-0.80", a.Score)
}

func TestNormalizeAnalysisMate(t *testing.T) {
	a := normalizeAnalysis(&searchResult{bestMove: "d1h5", isMate: true, mateIn: 3}, 'w')

	assert.Equal(t, "M3", a.Score)
	assert.Equal(t, 10000, a.ScoreCP)
	assert.Equal(t, 3, a.MateIn)

	// Getting mated as white
	b := normalizeAnalysis(&searchResult{bestMove: "g8h8", isMate: true, mateIn: 2}, 'b')
	assert.Equal(t, "M2", b.Score)
	assert.Equal(t, -10000, b.ScoreCP)
	assert.Equal(t, -2, b.MateIn)
}
