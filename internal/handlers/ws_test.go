package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingWriter flags any overlapping entry into its write methods,
// which a real websocket connection would punish with a panic.
type countingWriter struct {
	active  int32
	overlap int32
	writes  int32
}

func (w *countingWriter) enter() {
	if atomic.AddInt32(&w.active, 1) > 1 {
		atomic.StoreInt32(&w.overlap, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&w.writes, 1)
	atomic.AddInt32(&w.active, -1)
}

func (w *countingWriter) WriteJSON(interface{}) error      { w.enter(); return nil }
func (w *countingWriter) WriteMessage(int, []byte) error   { w.enter(); return nil }
func (w *countingWriter) SetWriteDeadline(time.Time) error { return nil }
func (w *countingWriter) Close() error                     { return nil }

func TestFeedClientSerializesWrites(t *testing.T) {
	w := &countingWriter{}
	client := &feedClient{conn: w}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.writeJSON(map[string]string{"type": "activity"}); err != nil {
				t.Errorf("writeJSON: %v", err)
			}
			if err := client.ping(); err != nil {
				t.Errorf("ping: %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&w.overlap) != 0 {
		t.Fatal("connection writes overlapped")
	}
	if got := atomic.LoadInt32(&w.writes); got != 16 {
		t.Errorf("writes = %d, want 16", got)
	}
}
