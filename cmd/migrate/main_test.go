package main

import (
	"errors"
	"testing"
)

type migratorStub struct {
	ups     int
	downs   int
	steps   []int
	version uint
	dirty   bool
	forced  int
	err     error
}

func (m *migratorStub) Up() error                    { m.ups++; return m.err }
func (m *migratorStub) Down() error                  { m.downs++; return m.err }
func (m *migratorStub) Steps(n int) error            { m.steps = append(m.steps, n); return m.err }
func (m *migratorStub) Version() (uint, bool, error) { return m.version, m.dirty, m.err }
func (m *migratorStub) Force(v int) error            { m.forced = v; return m.err }
func (m *migratorStub) Close() error                 { return nil }

func TestRunCommands(t *testing.T) {
	m := &migratorStub{version: 4}

	if msg, err := run(m, []string{"up"}); err != nil || msg != "migrations up complete" || m.ups != 1 {
		t.Fatalf("up: %q %v", msg, err)
	}
	if _, err := run(m, []string{"down"}); err != nil || m.downs != 1 {
		t.Fatalf("down: %v", err)
	}
	if _, err := run(m, []string{"down", "3"}); err != nil || len(m.steps) != 1 || m.steps[0] != -3 {
		t.Fatalf("down 3: %v %v", err, m.steps)
	}
	if msg, _ := run(m, []string{"version"}); msg != "current version: 4" {
		t.Fatalf("unexpected version message %q", msg)
	}
	m.dirty = true
	if msg, _ := run(m, []string{"version"}); msg != "current version: 4 (dirty)" {
		t.Fatalf("unexpected dirty message %q", msg)
	}
	if _, err := run(m, []string{"force", "3"}); err != nil || m.forced != 3 {
		t.Fatalf("force: %v %d", err, m.forced)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	m := &migratorStub{}

	cases := [][]string{
		{"sideways"},
		{"down", "zero"},
		{"down", "-1"},
		{"steps"},
		{"force"},
	}
	for _, args := range cases {
		if _, err := run(m, args); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	m := &migratorStub{err: errors.New("dirty database")}
	if _, err := run(m, []string{"up"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoMigrationsApplied(t *testing.T) {
	msg, err := run(&migratorStub{}, []string{"version"})
	if err != nil || msg != "no migrations applied" {
		t.Fatalf("unexpected %q %v", msg, err)
	}
}
