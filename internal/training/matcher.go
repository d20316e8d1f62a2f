package training

import "chesstrainer/internal/puzzle"

// CheckMove reports whether candidate is the scripted move at cursor.
// The candidate must already be in normalized from+to+promotion form;
// only the scripted line is accepted, an equally strong alternative is
// still wrong. A cursor at or past the end of the line matches nothing.
func CheckMove(p puzzle.Puzzle, cursor int, candidate string) bool {
	if cursor < 0 || cursor >= len(p.PrincipalVariation) {
		return false
	}
	return candidate == p.PrincipalVariation[cursor]
}
