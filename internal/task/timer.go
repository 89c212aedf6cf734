// internal/task/timer.go
package task

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/boxflow/internal/callbacks"
)

type timerEntry struct {
	timer   callbacks.Timer
	created time.Time
	calls   int
	// gate enforces the minimum interval between runs.
	gate *rate.Sometimes
}

// TimerRegistry runs the timers of a window once per frame on the UI thread.
type TimerRegistry struct {
	logger *zap.Logger
	now    func() time.Time
	timers map[callbacks.TimerID]*timerEntry
	order  []callbacks.TimerID
}

// TimerOption configures a TimerRegistry.
type TimerOption func(*TimerRegistry)

// WithClock replaces time.Now for delay and timeout bookkeeping.
func WithClock(now func() time.Time) TimerOption {
	return func(r *TimerRegistry) { r.now = now }
}

// NewTimerRegistry creates an empty registry.
func NewTimerRegistry(logger *zap.Logger, opts ...TimerOption) *TimerRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &TimerRegistry{
		logger: logger.Named("timers"),
		now:    time.Now,
		timers: map[callbacks.TimerID]*timerEntry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a timer. Timers run in the order they were added.
func (r *TimerRegistry) Add(id callbacks.TimerID, t callbacks.Timer) {
	if _, ok := r.timers[id]; !ok {
		r.order = append(r.order, id)
	}
	e := &timerEntry{timer: t, created: r.now()}
	if t.Interval > 0 {
		e.gate = &rate.Sometimes{Interval: t.Interval}
	}
	r.timers[id] = e
}

// Remove unregisters a timer and reports whether it existed.
func (r *TimerRegistry) Remove(id callbacks.TimerID) bool {
	if _, ok := r.timers[id]; !ok {
		return false
	}
	delete(r.timers, id)
	r.order = slices.DeleteFunc(r.order, func(o callbacks.TimerID) bool { return o == id })
	return true
}

// Len returns the number of registered timers.
func (r *TimerRegistry) Len() int { return len(r.timers) }

// Run invokes every due timer once. info supplies the CallbackInfo a timer
// observes. It returns the strongest update requested and the number of
// timers that ran. Timers that terminate, time out or panic are removed.
func (r *TimerRegistry) Run(frameStart time.Time, info func(callbacks.TimerID) callbacks.CallbackInfo) (callbacks.Update, int) {
	update := callbacks.DoNothing
	ran := 0
	now := r.now()
	var finished []callbacks.TimerID

	for _, id := range slices.Clone(r.order) {
		e, ok := r.timers[id]
		if !ok {
			continue
		}
		age := now.Sub(e.created)
		if age < e.timer.Delay {
			continue
		}
		if e.timer.Timeout > 0 && age >= e.timer.Timeout {
			finished = append(finished, id)
			continue
		}

		aboutToFinish := e.timer.Timeout > 0 && age+max(e.timer.Interval, 0) >= e.timer.Timeout
		var ret callbacks.TimerCallbackReturn
		called := false
		run := func() {
			called = true
			ret = r.invoke(id, e, callbacks.TimerCallbackInfo{
				CallbackInfo:    info(id),
				FrameStart:      frameStart,
				CallCount:       e.calls,
				IsAboutToFinish: aboutToFinish,
			})
		}
		if e.gate != nil {
			e.gate.Do(run)
		} else {
			run()
		}
		if !called {
			continue
		}
		e.calls++
		ran++
		update = update.Max(ret.ShouldUpdate)
		if ret.ShouldTerminate == callbacks.Terminate {
			finished = append(finished, id)
		}
	}

	for _, id := range finished {
		r.Remove(id)
	}
	if len(finished) > 0 {
		r.logger.Debug("timers finished", zap.Int("count", len(finished)), zap.Int("remaining", len(r.timers)))
	}
	return update, ran
}

func (r *TimerRegistry) invoke(id callbacks.TimerID, e *timerEntry, info callbacks.TimerCallbackInfo) (ret callbacks.TimerCallbackReturn) {
	if e.timer.Callback == nil {
		return callbacks.TimerCallbackReturn{ShouldTerminate: callbacks.Terminate}
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("timer callback panicked, removing timer",
				zap.Stringer("timer_id", id), zap.String("panic", fmt.Sprint(p)))
			ret = callbacks.TimerCallbackReturn{ShouldTerminate: callbacks.Terminate}
		}
	}()
	return e.timer.Callback(e.timer.Data, info)
}
