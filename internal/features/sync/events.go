package sync

import "sync"

// Event is one item on the live run stream. Exactly one payload field is
// set, discriminated by Kind.
type Event struct {
	Kind     string     `json:"kind"`
	Progress *Progress  `json:"progress,omitempty"`
	Log      *LogEntry  `json:"log,omitempty"`
	Stats    *SyncStats `json:"stats,omitempty"`
}

const (
	EventProgress = "progress"
	EventLog      = "log"
	EventStats    = "stats"
)

// Broadcaster fans events out to subscribers. Slow subscribers drop events
// rather than stall the run loop.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a buffered event channel and its cancel func. Cancel
// closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
