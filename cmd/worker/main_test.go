package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nsn-odds-data/internal/config"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/queue"
	"nsn-odds-data/internal/service"
)

type schedulerStub struct {
	specs   map[string]string
	fns     map[string]func(context.Context) error
	failOn  string
	started chan struct{}
}

func newSchedulerStub() *schedulerStub {
	return &schedulerStub{
		specs:   map[string]string{},
		fns:     map[string]func(context.Context) error{},
		started: make(chan struct{}),
	}
}

func (s *schedulerStub) Add(name, spec string, fn func(context.Context) error) error {
	if name == s.failOn {
		return errors.New("bad spec")
	}
	s.specs[name] = spec
	s.fns[name] = fn
	return nil
}

func (s *schedulerStub) Start(ctx context.Context) {
	close(s.started)
	<-ctx.Done()
}

type consumerStub struct{ ran chan queue.Handler }

func (c *consumerStub) Run(ctx context.Context, h queue.Handler) error {
	c.ran <- h
	<-ctx.Done()
	return nil
}

type refresherStub struct{ active, upcoming int }

func (r *refresherStub) RefreshActive(context.Context) (service.RefreshResult, error) {
	r.active++
	return service.RefreshResult{}, nil
}

func (r *refresherStub) RefreshUpcoming(context.Context) ([]domain.Event, error) {
	r.upcoming++
	return nil, nil
}

func TestSchedule(t *testing.T) {
	cfg := &config.Config{RefreshSchedule: "*/5 * * * *", UpcomingSchedule: "0 * * * *"}
	s := newSchedulerStub()
	r := &refresherStub{}

	if err := schedule(s, cfg, r, r); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if s.specs["refresh-odds"] != "*/5 * * * *" || s.specs["refresh-upcoming"] != "0 * * * *" {
		t.Fatalf("unexpected specs %v", s.specs)
	}

	_ = s.fns["refresh-odds"](context.Background())
	_ = s.fns["refresh-upcoming"](context.Background())
	if r.active != 1 || r.upcoming != 1 {
		t.Fatalf("expected one call each, got active=%d upcoming=%d", r.active, r.upcoming)
	}

	bad := newSchedulerStub()
	bad.failOn = "refresh-upcoming"
	if err := schedule(bad, cfg, r, r); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestRunLoopsStopsOnCancel(t *testing.T) {
	s := newSchedulerStub()
	c := &consumerStub{ran: make(chan queue.Handler, 1)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runLoops(ctx, s, c, func(context.Context, queue.GenerateJob) error { return nil })
		close(done)
	}()

	<-s.started
	if h := <-c.ran; h == nil {
		t.Fatal("expected the handler to reach the consumer")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loops did not stop")
	}
}

func TestConsumerName(t *testing.T) {
	if name := consumerName(); !strings.Contains(name, "-") {
		t.Fatalf("expected host-pid name, got %q", name)
	}
}
