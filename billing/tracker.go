package billing

import "sync"

type Signal string

const (
	SignalWarning Signal = "WARNING"
	SignalExpired Signal = "EXPIRED"
)

// DefaultWarnSeconds is the remaining time at which a package warning fires.
const DefaultWarnSeconds = 300

// Observer turns a stream of remaining-seconds readings into one-shot
// signals: WARNING the first time 0 < remaining <= WarnSeconds, EXPIRED the
// first time remaining <= 0.
type Observer struct {
	WarnSeconds int64
	warned      bool
	expired     bool
}

func NewObserver(warnSeconds int64) *Observer {
	if warnSeconds <= 0 {
		warnSeconds = DefaultWarnSeconds
	}
	return &Observer{WarnSeconds: warnSeconds}
}

func (o *Observer) Observe(remaining int64) []Signal {
	var out []Signal
	if remaining <= 0 {
		if !o.expired {
			o.expired = true
			out = append(out, SignalExpired)
		}
		return out
	}
	if remaining <= o.WarnSeconds && !o.warned {
		o.warned = true
		out = append(out, SignalWarning)
	}
	return out
}

// Tracker keeps one Observer per package session so signals fire once per
// session across any number of polls.
type Tracker struct {
	mu          sync.Mutex
	warnSeconds int64
	observers   map[uint]*Observer
}

func NewTracker(warnSeconds int64) *Tracker {
	return &Tracker{warnSeconds: warnSeconds, observers: make(map[uint]*Observer)}
}

func (t *Tracker) Observe(sessionID uint, remaining int64) []Signal {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.observers[sessionID]
	if !ok {
		o = NewObserver(t.warnSeconds)
		t.observers[sessionID] = o
	}
	return o.Observe(remaining)
}

// Forget drops the observer of a closed session.
func (t *Tracker) Forget(sessionID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.observers, sessionID)
}

func (t *Tracker) WarnSeconds() int64 {
	if t.warnSeconds <= 0 {
		return DefaultWarnSeconds
	}
	return t.warnSeconds
}
