// Package metrics keeps rolling per-frame timings of systems.
package metrics

import (
	"sort"
	"time"
)

// DefaultWindow is the number of frames a FrameTimer averages over.
const DefaultWindow = 120

type Timer interface {
	Start()
	Stop()
	Reset()
}

var _ Timer = (*FrameTimer)(nil)

// FrameTimer records one duration per frame in a fixed ring and reports
// statistics over the filled part of the ring.
type FrameTimer struct {
	samples []time.Duration
	index   int
	count   int
	last    time.Duration
	started time.Time
	now     func() time.Time
}

// NewFrameTimer returns a timer averaging over window frames.
// A non-positive window uses DefaultWindow.
func NewFrameTimer(window int) *FrameTimer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &FrameTimer{samples: make([]time.Duration, window), now: time.Now}
}

// Start marks the beginning of a measurement.
func (t *FrameTimer) Start() { t.started = t.now() }

// Stop records the time elapsed since Start as one sample.
func (t *FrameTimer) Stop() {
	if t.started.IsZero() {
		return
	}
	t.Add(t.now().Sub(t.started))
	t.started = time.Time{}
}

// Add records d as one sample.
func (t *FrameTimer) Add(d time.Duration) {
	t.last = d
	t.samples[t.index] = d
	t.index = (t.index + 1) % len(t.samples)
	if t.count < len(t.samples) {
		t.count++
	}
}

// Reset drops every sample.
func (t *FrameTimer) Reset() {
	clear(t.samples)
	t.index, t.count, t.last = 0, 0, 0
	t.started = time.Time{}
}

// Last returns the most recent sample.
func (t *FrameTimer) Last() time.Duration { return t.last }

// Count returns the number of samples held.
func (t *FrameTimer) Count() int { return t.count }

// Mean returns the average of the held samples.
func (t *FrameTimer) Mean() time.Duration {
	if t.count == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range t.samples[:t.count] {
		sum += d
	}
	return sum / time.Duration(t.count)
}

// Min returns the smallest held sample.
func (t *FrameTimer) Min() time.Duration {
	if t.count == 0 {
		return 0
	}
	m := t.samples[0]
	for _, d := range t.samples[1:t.count] {
		m = min(m, d)
	}
	return m
}

// Max returns the largest held sample.
func (t *FrameTimer) Max() time.Duration {
	var m time.Duration
	for _, d := range t.samples[:t.count] {
		m = max(m, d)
	}
	return m
}

// Profiler owns one FrameTimer per named section.
type Profiler struct {
	window int
	timers map[string]*FrameTimer
	now    func() time.Time
}

// NewProfiler creates a profiler whose timers average over window frames.
func NewProfiler(window int) *Profiler {
	return &Profiler{window: window, timers: make(map[string]*FrameTimer), now: time.Now}
}

// Timer returns the timer for name, creating it on first use.
func (p *Profiler) Timer(name string) *FrameTimer {
	t, ok := p.timers[name]
	if !ok {
		t = NewFrameTimer(p.window)
		t.now = p.now
		p.timers[name] = t
	}
	return t
}

// Time starts measuring name and returns the function that stops it.
//
//	defer p.Time("transform")()
func (p *Profiler) Time(name string) func() {
	t := p.Timer(name)
	t.Start()
	return t.Stop
}

// Snapshot is a point-in-time view of one timer.
type Snapshot struct {
	Name string
	Last time.Duration
	Mean time.Duration
	Max  time.Duration
}

// Snapshot returns every timer sorted by name.
func (p *Profiler) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(p.timers))
	for name, t := range p.timers {
		out = append(out, Snapshot{Name: name, Last: t.Last(), Mean: t.Mean(), Max: t.Max()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
