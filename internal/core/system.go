package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vehicle-emulator/internal/command"
	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/messaging"
	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/types"
)

const requestQueueSize = 64

var (
	ErrQueueFull = errors.New("command queue full")
	ErrStopped   = errors.New("emulator stopped")
)

// Request is one tokenized command from a source (redis, serial, stdin,
// buttons). Reply, if set, receives the outcome on the run-loop goroutine.
type Request struct {
	Tokens []string
	Source string
	Reply  func(error)
}

type Config struct {
	Registry  *model.Registry
	Model     string
	Transport model.Transport
	Clock     model.Clock
	Gate      *logger.Gate
	Messaging MessagingClient
	Logger    *logger.Logger
	Tick      time.Duration
}

// Emulator owns the active vehicle model. Only the Run goroutine calls into
// the model, so models need no locking.
type Emulator struct {
	registry  *model.Registry
	active    model.Model
	transport model.Transport
	clock     model.Clock
	gate      *logger.Gate
	redis     MessagingClient
	logger    *logger.Logger
	tick      time.Duration

	requests chan Request
	states   chan types.VehicleSnapshot
	stopped  chan struct{}
	stopOnce sync.Once

	// publishedButton is the ButtonActive value of the last queued snapshot.
	publishedButton bool
}

func NewEmulator(cfg Config) (*Emulator, error) {
	if cfg.Registry == nil {
		return nil, errors.New("no model registry")
	}
	if cfg.Clock == nil {
		return nil, errors.New("no clock")
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Millisecond
	}

	e := &Emulator{
		registry:  cfg.Registry,
		transport: cfg.Transport,
		clock:     cfg.Clock,
		gate:      cfg.Gate,
		redis:     cfg.Messaging,
		logger:    cfg.Logger,
		tick:      cfg.Tick,
		requests:  make(chan Request, requestQueueSize),
		states:    make(chan types.VehicleSnapshot, 1),
		stopped:   make(chan struct{}),
	}
	if err := e.activate(cfg.Model); err != nil {
		return nil, err
	}
	if e.redis != nil {
		e.redis.SetCallbacks(messaging.Callbacks{
			CommandCallback: func(line string) error {
				return e.SubmitLine(context.Background(), "redis", line, nil)
			},
		})
	}
	return e, nil
}

// ActiveModel returns the name of the active model. Call it from the Run
// goroutine or while Run is not executing.
func (e *Emulator) ActiveModel() string {
	return e.active.Name()
}

// Run ticks the active model and serves requests until ctx is cancelled.
func (e *Emulator) Run(ctx context.Context) error {
	e.logger.Infof("Emulator running model %s, tick %s", e.active.Name(), e.tick)

	pubDone := make(chan struct{})
	go func() {
		defer close(pubDone)
		e.publishLoop(ctx)
	}()
	defer func() { <-pubDone }()
	defer e.stopOnce.Do(func() { close(e.stopped) })

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	e.Tick()
	for {
		select {
		case <-ctx.Done():
			e.logger.Infof("Emulator stopped")
			return nil
		case <-ticker.C:
			e.Tick()
		case req := <-e.requests:
			e.Handle(req)
		}
	}
}

// Tick advances the active model to the current clock reading. A button
// hold expiring during the tick is published like a command would be.
func (e *Emulator) Tick() {
	e.active.Tick(e.clock())
	if e.redis == nil {
		return
	}
	if s, ok := e.active.(model.Snapshotter); ok && s.Snapshot().ButtonActive != e.publishedButton {
		e.publishState()
	}
}

// Submit queues a request, blocking until it is accepted, ctx ends or Run
// has returned.
func (e *Emulator) Submit(ctx context.Context, req Request) error {
	select {
	case e.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}
}

// TrySubmit queues a request without blocking. Used from GPIO event
// handlers, which must not stall.
func (e *Emulator) TrySubmit(req Request) error {
	select {
	case e.requests <- req:
		return nil
	default:
		e.logger.Warnf("Dropping %s command %v: queue full", req.Source, req.Tokens)
		return ErrQueueFull
	}
}

// SubmitLine tokenizes a raw line and queues it. Tokenizer errors are
// reported through reply as well as returned. Comment and blank lines are
// dropped silently.
func (e *Emulator) SubmitLine(ctx context.Context, source, line string, reply func(error)) error {
	tokens, err := command.Tokenize(line)
	if err != nil {
		e.logger.Warnf("Bad %s command line: %v", source, err)
		if reply != nil {
			reply(err)
		}
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := e.Submit(ctx, Request{Tokens: tokens, Source: source, Reply: reply}); err != nil {
		return fmt.Errorf("submit %s command: %w", source, err)
	}
	return nil
}

// PressButton queues a button press from a hardware source.
func (e *Emulator) PressButton(code types.ButtonCode) {
	e.TrySubmit(Request{Tokens: []string{code.String()}, Source: "button"})
}

// publishState hands the latest snapshot to the publisher. Only the newest
// pending snapshot is kept.
func (e *Emulator) publishState() {
	if e.redis == nil {
		return
	}
	snap := types.VehicleSnapshot{Model: e.active.Name()}
	if s, ok := e.active.(model.Snapshotter); ok {
		snap = s.Snapshot()
	}
	e.publishedButton = snap.ButtonActive
	select {
	case <-e.states:
	default:
	}
	e.states <- snap
}

func (e *Emulator) publishLoop(ctx context.Context) {
	if e.redis == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-e.states:
			if err := e.redis.PublishVehicleState(snap); err != nil {
				e.logger.Warnf("Failed to publish state: %v", err)
			}
		}
	}
}
