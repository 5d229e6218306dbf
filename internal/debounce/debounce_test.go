package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	writes []string
}

func (r *recorder) sink(id, content string) {
	r.mu.Lock()
	r.writes = append(r.writes, id+"="+content)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

func TestBurstCoalescesToLastWrite(t *testing.T) {
	var rec recorder
	w := NewWriter(30*time.Millisecond, rec.sink)

	w.Update("n1", "v1")
	w.Update("n1", "v2")
	w.Update("n1", "v3")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(rec.snapshot()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "n1=v3" {
		t.Errorf("writes = %v, want single n1=v3", got)
	}
}

func TestIndependentKeys(t *testing.T) {
	var rec recorder
	w := NewWriter(time.Hour, rec.sink)

	w.Update("a", "1")
	w.Update("b", "2")
	if w.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", w.Pending())
	}

	w.FlushNote("a")
	if w.Pending() != 1 {
		t.Fatalf("pending after FlushNote = %d, want 1", w.Pending())
	}
	got := rec.snapshot()
	if len(got) != 1 || got[0] != "a=1" {
		t.Errorf("writes = %v", got)
	}
}

func TestFlushEmitsEverything(t *testing.T) {
	var rec recorder
	w := NewWriter(time.Hour, rec.sink)

	w.Update("a", "1")
	w.Update("b", "2")
	w.Flush()

	if w.Pending() != 0 {
		t.Errorf("pending = %d after Flush", w.Pending())
	}
	if len(rec.snapshot()) != 2 {
		t.Errorf("writes = %v, want both", rec.snapshot())
	}

	// Flushing again is a no-op.
	w.Flush()
	if len(rec.snapshot()) != 2 {
		t.Errorf("second Flush re-emitted: %v", rec.snapshot())
	}
}

func TestStopFlushesAndRejects(t *testing.T) {
	var rec recorder
	w := NewWriter(time.Hour, rec.sink)

	w.Update("a", "1")
	w.Stop()

	if len(rec.snapshot()) != 1 {
		t.Errorf("Stop did not flush: %v", rec.snapshot())
	}

	w.Update("b", "late")
	w.Flush()
	if len(rec.snapshot()) != 1 {
		t.Errorf("update after Stop was accepted: %v", rec.snapshot())
	}
}
