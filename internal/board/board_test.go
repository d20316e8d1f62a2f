package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLegalMove(t *testing.T) {
	applied, err := Apply(StartingFEN, "e2e4", true)
	require.NoError(t, err)
	assert.Equal(t, "e4", applied.SAN)
	assert.Equal(t, "e2e4", applied.UCI)
	assert.Contains(t, applied.FEN, " b ", "side to move should flip")
}

func TestApplyIllegalMove(t *testing.T) {
	_, err := Apply(StartingFEN, "e2e5", true)
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestApplyMalformedEncoding(t *testing.T) {
	for _, enc := range []string{"", "e2", "e2e", "e2e4x", "i2i4", "e2e4qq"} {
		_, err := Apply(StartingFEN, enc, true)
		assert.ErrorIs(t, err, ErrIllegalMove, "encoding %q", enc)
	}
}

func TestApplyKeepsKingSafe(t *testing.T) {
	// White king on e1 is pinned against the rook on e8; the bishop on e2
	// cannot legally leave the e-file.
	fen := "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1"
	_, err := Apply(fen, "e2d3", true)
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestApplyPromotionDefaultsToQueen(t *testing.T) {
	fen := "8/4P1k1/8/8/8/8/8/4K3 w - - 0 1"

	applied, err := Apply(fen, "e7e8", true)
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", applied.UCI)
	assert.Equal(t, "e8=Q", applied.SAN)
}

func TestApplyPromotionVerbatim(t *testing.T) {
	fen := "8/4P1k1/8/8/8/8/8/4K3 w - - 0 1"

	applied, err := Apply(fen, "e7e8n", false)
	require.NoError(t, err)
	assert.Equal(t, "e7e8n", applied.UCI)

	// Scripted replies get no queen default
	_, err = Apply(fen, "e7e8", false)
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestTurn(t *testing.T) {
	turn, err := Turn(StartingFEN)
	require.NoError(t, err)
	assert.Equal(t, byte('w'), turn)

	_, err = Turn("garbage")
	assert.Error(t, err)
}

func TestIsEncodedMove(t *testing.T) {
	assert.True(t, IsEncodedMove("e2e4"))
	assert.True(t, IsEncodedMove("a7a8q"))
	assert.False(t, IsEncodedMove("e4"))
	assert.False(t, IsEncodedMove("a7a8k"))
	assert.False(t, IsEncodedMove("e2e4 "))
}

func TestToASCII(t *testing.T) {
	ascii := ToASCII(StartingFEN, false)
	assert.Contains(t, ascii, "a b c d e f g h")
	assert.Contains(t, ascii, "R N B Q K B N R")

	flipped := ToASCII(StartingFEN, true)
	assert.Contains(t, flipped, "h g f e d c b a")
}
