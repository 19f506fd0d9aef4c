// Package notice delivers single-line user-facing notices and gates the
// one notice that fans out — "session expired" — behind a cooldown so a
// burst of concurrently failing requests interrupts the user once.
package notice

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/luodachuixg/nola-console/internal/ui"
)

// Kind classifies a notice for presentation.
type Kind int

const (
	Info Kind = iota
	Error
)

// Notifier is the user-facing single-line notice primitive.
type Notifier interface {
	Notify(kind Kind, text string)
}

// TermNotifier writes notices to a terminal stream (stderr by default).
type TermNotifier struct {
	W io.Writer
}

func (n *TermNotifier) Notify(kind Kind, text string) {
	w := n.W
	if w == nil {
		w = os.Stderr
	}
	switch kind {
	case Error:
		fmt.Fprintf(w, "%s %s\n", ui.ErrorLabel.Sprint("error:"), text)
	default:
		fmt.Fprintf(w, "%s %s\n", ui.InfoLabel.Sprint("info:"), text)
	}
}

// DefaultCooldown matches the original console's 3-second suppression
// window for duplicate session-expired notices.
const DefaultCooldown = 3 * time.Second

// Gate is the expiry-notice debouncer: a test-and-set flag with a
// scheduled reset. ShouldNotify returns true exactly when no notice is
// in flight; the true call arms a single timer that clears the flag
// after the cooldown. The flag is deliberately volatile — it starts
// clear on every process start.
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	showing  bool
	timer    *time.Timer
}

// NewGate creates a Gate. A zero cooldown uses DefaultCooldown.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown}
}

// ShouldNotify reports whether the caller should emit a visible notice.
// At most one timer is ever armed: calls made while the cooldown is
// active return false without touching it.
func (g *Gate) ShouldNotify() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.showing {
		return false
	}
	g.showing = true
	g.timer = time.AfterFunc(g.cooldown, func() {
		g.mu.Lock()
		g.showing = false
		g.timer = nil
		g.mu.Unlock()
	})
	return true
}

// Stop cancels any pending reset timer. Meant for teardown in tests;
// the gate is unusable for deduplication afterwards.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.showing = false
}
