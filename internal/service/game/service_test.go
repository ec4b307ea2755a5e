package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/connect4-table/internal/domain"
)

type fakeNotifier struct {
	mu     sync.Mutex
	calls  map[string][]domain.Snapshot
	closed []string
}

func (f *fakeNotifier) TableClosed(tableID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, tableID)
}

func (f *fakeNotifier) NotifyState(tableID string, snapshot domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string][]domain.Snapshot)
	}
	f.calls[tableID] = append(f.calls[tableID], snapshot)
}

func (f *fakeNotifier) count(tableID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[tableID])
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []domain.RoundResult
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, result domain.RoundResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	return f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *fakeNotifier, *fakeRecorder, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)}
	m := NewManager()
	m.now = c.now
	rec := &fakeRecorder{}
	svc := NewService(m, rec)
	n := &fakeNotifier{}
	svc.SetNotifier(n)
	return svc, n, rec, c
}

func dropAll(t *testing.T, svc *Service, tableID string, columns ...int) domain.Snapshot {
	t.Helper()
	var s domain.Snapshot
	for i, col := range columns {
		var err error
		s, err = svc.Drop(tableID, col)
		if err != nil {
			t.Fatalf("drop %d (column %d) failed: %v", i, col, err)
		}
	}
	return s
}

func TestCreateAndState(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	table, initial, err := svc.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if initial.Turn != domain.PlayerA || initial.Outcome != domain.InProgress || initial.Moves != 0 {
		t.Fatalf("unexpected initial state %+v", initial)
	}

	state, err := svc.State(table.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Grid != initial.Grid || state.Turn != initial.Turn {
		t.Fatalf("state differs from creation snapshot")
	}
	if svc.Tables.Count() != 1 {
		t.Fatalf("expected one table, got %d", svc.Tables.Count())
	}
}

func TestUnknownTable(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.State("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("state: expected ErrTableNotFound, got %v", err)
	}
	if _, err := svc.Drop("nope", 0); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("drop: expected ErrTableNotFound, got %v", err)
	}
	if _, err := svc.Reset("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("reset: expected ErrTableNotFound, got %v", err)
	}
	if err := svc.Close("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("close: expected ErrTableNotFound, got %v", err)
	}
}

func TestDropNotifiesAcceptedMovesOnly(t *testing.T) {
	svc, notifier, _, _ := newTestService(t)
	table, _, _ := svc.Create()

	dropAll(t, svc, table.ID, 3, 3)
	s, err := svc.Drop(table.ID, 42)
	if err != domain.ErrInvalidColumn {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if s.Moves != 2 || s.Turn != domain.PlayerA {
		t.Fatalf("rejected drop must return the unchanged state, got %+v", s)
	}
	if got := notifier.count(table.ID); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}
}

func TestFinishedRoundIsRecorded(t *testing.T) {
	svc, notifier, rec, c := newTestService(t)
	table, _, _ := svc.Create()
	started := c.t

	c.t = c.t.Add(90 * time.Second)
	s := dropAll(t, svc, table.ID, 0, 1, 0, 1, 0, 1, 0)
	if s.Outcome != domain.Win(domain.PlayerA) {
		t.Fatalf("expected Win(A), got %+v", s.Outcome)
	}

	if _, err := svc.Drop(table.ID, 2); err != domain.ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}

	svc.Wait()
	if len(rec.results) != 1 {
		t.Fatalf("expected one recorded round, got %d", len(rec.results))
	}
	got := rec.results[0]
	if got.TableID != table.ID || got.Status != domain.StatusWon || got.Winner != domain.PlayerA || got.Moves != 7 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.Duration() != 90*time.Second || !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected timing %s from %s", got.Duration(), got.StartedAt)
	}
	if notifier.count(table.ID) != 7 {
		t.Fatalf("expected 7 notifications, got %d", notifier.count(table.ID))
	}
}

func TestRecorderFailureIsNotFatal(t *testing.T) {
	svc, _, rec, _ := newTestService(t)
	rec.err = errors.New("db down")
	table, _, _ := svc.Create()

	s := dropAll(t, svc, table.ID, 0, 1, 0, 1, 0, 1, 0)
	svc.Wait()
	if s.Outcome.Status != domain.StatusWon {
		t.Fatalf("expected a win despite the archive failing, got %+v", s.Outcome)
	}
}

func TestResetStartsNewRound(t *testing.T) {
	svc, notifier, rec, c := newTestService(t)
	table, _, _ := svc.Create()

	dropAll(t, svc, table.ID, 0, 1, 0, 1, 0, 1, 0)
	svc.Wait()
	c.t = c.t.Add(time.Minute)
	s, err := svc.Reset(table.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Moves != 0 || s.Turn != domain.PlayerA || s.Outcome != domain.InProgress {
		t.Fatalf("unexpected state after reset %+v", s)
	}
	if notifier.count(table.ID) != 8 {
		t.Fatalf("expected reset to notify, got %d notifications", notifier.count(table.ID))
	}

	c.t = c.t.Add(time.Minute)
	dropAll(t, svc, table.ID, 6, 5, 6, 5, 6, 5, 6)
	svc.Wait()
	if len(rec.results) != 2 {
		t.Fatalf("expected two rounds, got %d", len(rec.results))
	}
	if d := rec.results[1].Duration(); d != time.Minute {
		t.Fatalf("second round should be timed from the reset, got %s", d)
	}
}

func TestNilCollaborators(t *testing.T) {
	svc := NewService(NewManager(), nil)
	table, _, err := svc.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dropAll(t, svc, table.ID, 0, 1, 0, 1, 0, 1, 0)
	svc.Wait()
}

func TestCloseNotifies(t *testing.T) {
	svc, notifier, _, _ := newTestService(t)
	table, _, _ := svc.Create()

	if err := svc.Close(table.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(notifier.closed) != 1 || notifier.closed[0] != table.ID {
		t.Fatalf("expected close notification for %s, got %v", table.ID, notifier.closed)
	}
	if _, err := svc.Drop(table.ID, 0); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected closed table to be gone, got %v", err)
	}
}

func TestCleanupIdleTables(t *testing.T) {
	svc, notifier, _, c := newTestService(t)
	stale, _, _ := svc.Create()
	c.t = c.t.Add(30 * time.Minute)
	fresh, _, _ := svc.Create()

	c.t = c.t.Add(45 * time.Minute)
	dropAll(t, svc, fresh.ID, 3)

	if n := svc.EvictIdle(time.Hour); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if len(notifier.closed) != 1 || notifier.closed[0] != stale.ID {
		t.Fatalf("expected only %s closed, got %v", stale.ID, notifier.closed)
	}
	if _, ok := svc.Tables.GetTable(fresh.ID); !ok {
		t.Fatalf("active table was evicted")
	}
	if svc.Tables.Count() != 1 {
		t.Fatalf("expected one table left, got %d", svc.Tables.Count())
	}
}

func TestConcurrentDropsAreSerialised(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	table, _, _ := svc.Create()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			if _, err := svc.Drop(table.ID, col); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i % domain.Columns)
	}
	wg.Wait()
	svc.Wait()

	s, _ := svc.State(table.ID)
	if s.Moves != accepted {
		t.Fatalf("expected %d discs, grid reports %d", accepted, s.Moves)
	}
}

type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingNotifier) NotifyState(tableID string, snapshot domain.Snapshot) {
	b.entered <- struct{}{}
	<-b.release
}

func (b *blockingNotifier) TableClosed(tableID string) {}

func TestSlowNotifierDoesNotHoldTable(t *testing.T) {
	svc := NewService(NewManager(), nil)
	n := &blockingNotifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
	svc.SetNotifier(n)
	table, _, _ := svc.Create()

	dropped := make(chan error, 1)
	go func() {
		_, err := svc.Drop(table.ID, 3)
		dropped <- err
	}()

	select {
	case <-n.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("notifier never called")
	}

	state := make(chan domain.Snapshot, 1)
	go func() {
		s, _ := svc.State(table.ID)
		state <- s
	}()
	select {
	case s := <-state:
		if s.Moves != 1 {
			t.Fatalf("expected the placed disc to be visible, got %d moves", s.Moves)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("State blocked while a notification was in flight")
	}

	close(n.release)
	if err := <-dropped; err != nil {
		t.Fatalf("drop: %v", err)
	}
}

func TestStaleStateIsNotPushed(t *testing.T) {
	svc, notifier, _, _ := newTestService(t)
	table, _, _ := svc.Create()

	newer := domain.Snapshot{Moves: 2}
	older := domain.Snapshot{Moves: 1}
	svc.notify(table, 2, newer)
	svc.notify(table, 1, older)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	got := notifier.calls[table.ID]
	if len(got) != 1 || got[0].Moves != 2 {
		t.Fatalf("expected only the newer state, got %+v", got)
	}
}
