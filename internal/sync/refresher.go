package sync

import (
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is a tea.Msg emitted on every refresh interval. Dashboards
// reload their listings when it arrives so expiry countdowns and status
// changes stay current even without a push event.
type TickMsg struct {
	At time.Time
}

// DefaultInterval is the refresh cadence when none is configured.
const DefaultInterval = 60 * time.Second

// Refresher emits periodic refresh ticks into the Bubble Tea runtime.
// Manual refreshes can be triggered at any time; pending ticks are
// dropped rather than queued when the UI is slow to drain them.
type Refresher struct {
	interval time.Duration
	tickCh   chan TickMsg
	stopCh   chan struct{}

	mu      gosync.Mutex
	running bool
}

// New creates a Refresher with the given interval. Zero or negative
// means DefaultInterval.
func New(interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		interval: interval,
		tickCh:   make(chan TickMsg, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the tick loop and returns the subscription command.
// Calling Start on a running Refresher only re-subscribes.
func (r *Refresher) Start() tea.Cmd {
	r.mu.Lock()
	if !r.running {
		r.running = true
		go r.loop()
	}
	r.mu.Unlock()

	return r.WaitForTick()
}

// Stop halts the tick loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
}

// Trigger requests an immediate refresh without waiting for the timer.
func (r *Refresher) Trigger() {
	r.send(TickMsg{At: time.Now()})
}

func (r *Refresher) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case t := <-ticker.C:
			r.send(TickMsg{At: t})
		}
	}
}

// send delivers a tick without blocking; a pending undelivered tick
// already covers this one.
func (r *Refresher) send(msg TickMsg) {
	select {
	case r.tickCh <- msg:
	default:
	}
}

// WaitForTick returns a tea.Cmd that waits for the next tick. The
// handler must call it again after processing a TickMsg to keep the
// subscription alive.
func (r *Refresher) WaitForTick() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.tickCh
		if !ok {
			return nil
		}
		return msg
	}
}
