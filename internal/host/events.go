package host

import "sync"

// Event channels and types the media center emits.
const (
	ChannelFull    = "full"
	ChannelApp     = "app"
	ChannelStorage = "storage"

	TypeComplete = "complite"
	TypeExit     = "exit"
	TypeDestroy  = "destroy"
	TypeChange   = "change"
)

// Event is one lifecycle notification. Key and Value are set for storage
// changes; Activity for page renders.
type Event struct {
	Type     string
	Key      string
	Value    any
	Activity string
}

type subscription struct {
	fn func(Event)
}

// Listener is an in-process publish/subscribe bus keyed by channel name
type Listener struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

func NewListener() *Listener {
	return &Listener{subs: make(map[string][]*subscription)}
}

// Follow registers fn on channel and returns a func that removes it.
func (l *Listener) Follow(channel string, fn func(Event)) (unfollow func()) {
	sub := &subscription{fn: fn}

	l.mu.Lock()
	l.subs[channel] = append(l.subs[channel], sub)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			list := l.subs[channel]
			for i, s := range list {
				if s == sub {
					l.subs[channel] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Send delivers e synchronously to every follower of channel, in
// registration order. Handlers may follow or unfollow while running.
func (l *Listener) Send(channel string, e Event) {
	l.mu.Lock()
	subs := append([]*subscription(nil), l.subs[channel]...)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}
