package logger

import "sync/atomic"

// Gate is the console side-channel for per-frame diagnostics. Lines pass only
// while verbose output is enabled and at most once per interval, so a slow
// console never falls behind the bus. Time is supplied by the caller in
// milliseconds and is independent of any frame cadence.
type Gate struct {
	log      *Logger
	interval int64
	verbose  atomic.Bool
	last     int64
	primed   bool
}

func NewGate(l *Logger, intervalMs int64, verbose bool) *Gate {
	g := &Gate{log: l, interval: intervalMs}
	g.verbose.Store(verbose)
	return g
}

func (g *Gate) SetVerbose(on bool) {
	if g == nil {
		return
	}
	g.verbose.Store(on)
}

func (g *Gate) Verbose() bool {
	return g != nil && g.verbose.Load()
}

// Allow reports whether a line may be written at now and, if so, consumes
// the slot.
func (g *Gate) Allow(now int64) bool {
	if !g.Verbose() || g.log == nil {
		return false
	}
	if g.primed && now-g.last < g.interval {
		return false
	}
	g.last = now
	g.primed = true
	return true
}

// Infof writes through the gate.
func (g *Gate) Infof(now int64, format string, v ...interface{}) {
	if g.Allow(now) {
		g.log.Infof(format, v...)
	}
}

// Warnf writes through the gate.
func (g *Gate) Warnf(now int64, format string, v ...interface{}) {
	if g.Allow(now) {
		g.log.Warnf(format, v...)
	}
}
