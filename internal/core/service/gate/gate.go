// Package gate implements the client-side password check that hides the gallery.
//
// The secret ships with the site configuration and is compared in plain text. It is
// a courtesy lock for guests, not access control: anything that must stay private
// needs a server-side authorization check instead.
package gate

import (
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// WrongPasswordMessage is shown when a candidate password does not match
const WrongPasswordMessage = "Incorrect password. Please try again."

// Gate compares candidates against a fixed secret
type Gate struct {
	secret string
}

// New creates a new Gate
func New(secret string) *Gate {
	return &Gate{secret: secret}
}

// Check reports whether candidate exactly matches the secret
func (g *Gate) Check(candidate string) bool {
	return candidate == g.secret
}

// Lock is the unlocked state of one mounted page. It is lost when the page goes away.
type Lock struct {
	gate     *Gate
	mu       sync.RWMutex
	unlocked bool
	message  string
}

// NewLock creates a locked Lock
func (g *Gate) NewLock() *Lock {
	return &Lock{gate: g}
}

// Unlock checks candidate and flips the lock open on match
func (l *Lock) Unlock(candidate string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.gate.Check(candidate) {
		l.message = WrongPasswordMessage
		return domain.ErrWrongPassword
	}
	l.unlocked = true
	l.message = ""
	return nil
}

// Unlocked reports whether the gated content is revealed
func (l *Lock) Unlocked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unlocked
}

// Message returns the last gate error, if any
func (l *Lock) Message() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.message
}
