package sync

import (
	"testing"
	"time"
)

func recvTick(t *testing.T, r *Refresher) TickMsg {
	t.Helper()

	msgCh := make(chan TickMsg, 1)
	go func() {
		msg := r.WaitForTick()()
		if tick, ok := msg.(TickMsg); ok {
			msgCh <- tick
		}
	}()

	select {
	case tick := <-msgCh:
		return tick
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return TickMsg{}
	}
}

func TestTriggerDeliversTick(t *testing.T) {
	r := New(time.Hour)
	r.Start()
	defer r.Stop()

	r.Trigger()
	tick := recvTick(t, r)
	if tick.At.IsZero() {
		t.Error("tick has no timestamp")
	}
}

func TestPendingTickAbsorbsFurtherTriggers(t *testing.T) {
	r := New(time.Hour)
	r.Start()
	defer r.Stop()

	r.Trigger()
	r.Trigger()
	r.Trigger()

	recvTick(t, r)

	// One undelivered tick may remain; a third receive must not be
	// possible without a new trigger.
	drained := 0
	for {
		select {
		case <-r.tickCh:
			drained++
			if drained > 1 {
				t.Fatalf("queued %d extra ticks, want at most 1", drained)
			}
		default:
			return
		}
	}
}

func TestIntervalTicks(t *testing.T) {
	r := New(20 * time.Millisecond)
	r.Start()
	defer r.Stop()

	recvTick(t, r)
	recvTick(t, r)
}

func TestStartTwiceOnlyRunsOneLoop(t *testing.T) {
	r := New(time.Hour)
	r.Start()
	r.Start()
	r.Stop()

	// A second Stop must not panic on an already-closed channel.
	r.Stop()
}
