package notice

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateSingleTrueWithinCooldown(t *testing.T) {
	g := NewGate(time.Minute)
	defer g.Stop()

	trues := 0
	for i := 0; i < 10; i++ {
		if g.ShouldNotify() {
			trues++
		}
	}
	if trues != 1 {
		t.Errorf("got %d true results within cooldown, want 1", trues)
	}
}

func TestGateResetsAfterCooldown(t *testing.T) {
	g := NewGate(30 * time.Millisecond)
	defer g.Stop()

	if !g.ShouldNotify() {
		t.Fatal("first call = false, want true")
	}
	if g.ShouldNotify() {
		t.Fatal("second call within cooldown = true, want false")
	}

	time.Sleep(80 * time.Millisecond)

	if !g.ShouldNotify() {
		t.Error("call after cooldown = false, want true")
	}
}

func TestGateConcurrentCallers(t *testing.T) {
	g := NewGate(time.Minute)
	defer g.Stop()

	var trues atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.ShouldNotify() {
				trues.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := trues.Load(); got != 1 {
		t.Errorf("got %d true results across concurrent callers, want 1", got)
	}
}

func TestTermNotifierWritesSingleLine(t *testing.T) {
	var buf bytes.Buffer
	n := &TermNotifier{W: &buf}

	n.Notify(Error, "session expired")

	out := buf.String()
	if !strings.Contains(out, "session expired") {
		t.Errorf("output %q missing notice text", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("output %q is not a single line", out)
	}
}
