package training

import (
	"sync"
	"time"

	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
)

// Trainer drives one training run over a fixed puzzle set. It owns the
// navigation cursor and rebuilds the session from scratch on every
// puzzle change, cancelling any pending opponent reply first.
type Trainer struct {
	mu         sync.Mutex
	set        *puzzle.Set
	store      progress.Store
	replyDelay time.Duration
	onReply    func(Reply)
	index      int
	session    *Session
}

// NewTrainer starts training at index 0 of set. A negative replyDelay
// applies scripted replies synchronously, which the local trainer and
// tests use; zero means the default delay.
func NewTrainer(set *puzzle.Set, store progress.Store, replyDelay time.Duration, onReply func(Reply)) *Trainer {
	t := &Trainer{
		set:        set,
		store:      store,
		replyDelay: replyDelay,
		onReply:    onReply,
	}
	t.session = t.buildSession(0)
	return t
}

func (t *Trainer) buildSession(index int) *Session {
	p := t.set.At(index)
	return NewSession(p, Config{
		ReplyDelay: t.replyDelay,
		OnReply:    t.onReply,
		OnSolve: func(puzzleID string, difficulty core.Difficulty) error {
			_, err := t.store.RecordSolve(t.set.Key, puzzleID, difficulty)
			return err
		},
		OnAttempt: func() {
			// Attempt counting is best effort; a failed bump must not
			// block the move.
			_ = t.store.RecordAttempt(t.set.Key)
		},
	})
}

// Session returns the session for the puzzle currently displayed.
func (t *Trainer) Session() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Index returns the current position within the set.
func (t *Trainer) Index() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

func (t *Trainer) Len() int {
	return t.set.Len()
}

func (t *Trainer) Key() core.CollectionKey {
	return t.set.Key
}

// Next moves to the following puzzle. No-op at the last index.
func (t *Trainer) Next() bool {
	return t.navigate(+1)
}

// Previous moves to the prior puzzle. No-op at index 0.
func (t *Trainer) Previous() bool {
	return t.navigate(-1)
}

func (t *Trainer) navigate(step int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.index + step
	if next < 0 || next >= t.set.Len() {
		return false
	}

	t.session.Cancel()
	t.index = next
	t.session = t.buildSession(next)
	return true
}

// Stats reads the collection's aggregate progress.
func (t *Trainer) Stats() (progress.Stats, error) {
	return t.store.Stats(t.set.Key)
}

// Close cancels any pending reply; the trainer is unusable afterwards.
func (t *Trainer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session.Cancel()
}
