// internal/task/thread.go
// Package task runs background threads and frame timers on behalf of node
// callbacks. Threads communicate with the UI thread only through channels;
// timers run on the UI thread between frames.
package task

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

const (
	// inboxSize buffers UI-to-thread messages per thread.
	inboxSize = 16
	// outboxSize buffers thread-to-UI messages shared by a registry.
	outboxSize = 256
)

// Envelope is a message a thread sent to the UI thread, together with the
// app data its writeback callback runs against.
type Envelope struct {
	Thread        callbacks.ThreadID
	WritebackData *refany.RefAny
	Msg           callbacks.ThreadReceiveMsg
}

// Thread is a running background function. Stop it exactly once; stopping
// sends TerminateThread and waits for the function to return.
type Thread struct {
	id            callbacks.ThreadID
	logger        *zap.Logger
	writebackData *refany.RefAny

	inbox  chan callbacks.ThreadSendMsg
	outbox chan<- Envelope
	quit   chan struct{}
	done   chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// StartThread launches fn on its own goroutine. Messages it sends are
// delivered to outbox.
func StartThread(id callbacks.ThreadID, initial, writebackData *refany.RefAny, fn callbacks.ThreadFunc, outbox chan<- Envelope, logger *zap.Logger) *Thread {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Thread{
		id:            id,
		logger:        logger.With(zap.Stringer("thread_id", id)),
		writebackData: writebackData,
		inbox:         make(chan callbacks.ThreadSendMsg, inboxSize),
		outbox:        outbox,
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run(initial, fn)
	return t
}

func (t *Thread) run(initial *refany.RefAny, fn callbacks.ThreadFunc) {
	defer t.wg.Done()
	defer close(t.done)
	defer func() {
		if p := recover(); p != nil {
			t.logger.Error("background thread panicked", zap.String("panic", fmt.Sprint(p)))
		}
	}()
	t.logger.Debug("background thread started")
	fn(initial, sender{t}, receiver{t})
	t.logger.Debug("background thread finished")
}

// ID returns the thread id.
func (t *Thread) ID() callbacks.ThreadID { return t.id }

// Send delivers a message to the thread. It reports false once the thread
// has been stopped or its inbox is full.
func (t *Thread) Send(msg callbacks.ThreadSendMsg) bool {
	select {
	case <-t.quit:
		return false
	default:
	}
	select {
	case t.inbox <- msg:
		return true
	default:
		t.logger.Warn("thread inbox full, message dropped")
		return false
	}
}

// Finished reports whether the thread function has returned.
func (t *Thread) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Stop signals TerminateThread and waits for the thread to return.
func (t *Thread) Stop() {
	t.stopOnce.Do(func() { close(t.quit) })
	t.wg.Wait()
}

type sender struct{ t *Thread }

// Send blocks until the UI side has room or the thread is stopped.
func (s sender) Send(msg callbacks.ThreadReceiveMsg) bool {
	select {
	case s.t.outbox <- Envelope{Thread: s.t.id, WritebackData: s.t.writebackData, Msg: msg}:
		return true
	case <-s.t.quit:
		return false
	}
}

type receiver struct{ t *Thread }

// Recv yields TerminateThread once the thread has been stopped.
func (r receiver) Recv() (callbacks.ThreadSendMsg, bool) {
	select {
	case m := <-r.t.inbox:
		return m, true
	case <-r.t.quit:
		return callbacks.TerminateThread, true
	}
}

func (r receiver) TryRecv() (callbacks.ThreadSendMsg, bool) {
	select {
	case <-r.t.quit:
		return callbacks.TerminateThread, true
	default:
	}
	select {
	case m := <-r.t.inbox:
		return m, true
	default:
		return 0, false
	}
}

// ThreadRegistry owns the threads of a window. Messages from all of its
// threads share one queue, so they are drained in arrival order.
type ThreadRegistry struct {
	logger  *zap.Logger
	outbox  chan Envelope
	mu      sync.Mutex
	threads map[callbacks.ThreadID]*Thread
}

// NewThreadRegistry creates an empty registry.
func NewThreadRegistry(logger *zap.Logger) *ThreadRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThreadRegistry{
		logger:  logger.Named("threads"),
		outbox:  make(chan Envelope, outboxSize),
		threads: map[callbacks.ThreadID]*Thread{},
	}
}

// Start launches a thread under id.
func (r *ThreadRegistry) Start(id callbacks.ThreadID, initial, writebackData *refany.RefAny, fn callbacks.ThreadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.threads[id]; ok {
		r.logger.Warn("thread id reused, stopping the previous thread", zap.Stringer("thread_id", id))
		old.Stop()
	}
	r.threads[id] = StartThread(id, initial, writebackData, fn, r.outbox, r.logger)
}

// Send delivers msg to one thread.
func (r *ThreadRegistry) Send(id callbacks.ThreadID, msg callbacks.ThreadSendMsg) bool {
	r.mu.Lock()
	t, ok := r.threads[id]
	r.mu.Unlock()
	return ok && t.Send(msg)
}

// Broadcast delivers msg to every thread.
func (r *ThreadRegistry) Broadcast(msg callbacks.ThreadSendMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.threads {
		t.Send(msg)
	}
}

// Stop terminates and joins one thread. It reports whether the id was known.
func (r *ThreadRegistry) Stop(id callbacks.ThreadID) bool {
	r.mu.Lock()
	t, ok := r.threads[id]
	delete(r.threads, id)
	r.mu.Unlock()
	if ok {
		t.Stop()
	}
	return ok
}

// StopAll terminates and joins every thread.
func (r *ThreadRegistry) StopAll() {
	r.mu.Lock()
	threads := r.threads
	r.threads = map[callbacks.ThreadID]*Thread{}
	r.mu.Unlock()
	for _, t := range threads {
		t.Stop()
	}
}

// Len returns the number of live threads.
func (r *ThreadRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.threads)
}

// Drain returns every queued message in arrival order without blocking, then
// forgets threads whose function has returned.
func (r *ThreadRegistry) Drain() []Envelope {
	var out []Envelope
drain:
	for {
		select {
		case e := <-r.outbox:
			out = append(out, e)
		default:
			break drain
		}
	}

	r.mu.Lock()
	var finished []*Thread
	for id, t := range r.threads {
		if t.Finished() {
			finished = append(finished, t)
			delete(r.threads, id)
		}
	}
	r.mu.Unlock()
	for _, t := range finished {
		t.Stop()
	}
	return out
}
