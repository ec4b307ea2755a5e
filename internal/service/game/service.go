package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iamasit07/connect4-table/internal/domain"
	log "github.com/sirupsen/logrus"
)

// Notifier pushes fresh state to whoever is watching a table.
type Notifier interface {
	NotifyState(tableID string, snapshot domain.Snapshot)
	TableClosed(tableID string)
}

// ResultRecorder archives finished rounds.
type ResultRecorder interface {
	Record(ctx context.Context, result domain.RoundResult) error
}

const recordTimeout = 5 * time.Second

// Service is the entry point the transports use to drive tables.
type Service struct {
	Tables   *Manager
	notifier Notifier       // Optional, can be nil
	recorder ResultRecorder // Optional, can be nil
	pending  sync.WaitGroup
}

func NewService(tables *Manager, recorder ResultRecorder) *Service {
	return &Service{
		Tables:   tables,
		recorder: recorder,
	}
}

// SetNotifier is separate from NewService because the socket layer needs the
// service before it exists.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create opens a new table and returns it with its initial state.
func (s *Service) Create() (*Table, domain.Snapshot, error) {
	table, err := s.Tables.CreateTable()
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	return table, table.Game.Snapshot(), nil
}

func (s *Service) State(tableID string) (domain.Snapshot, error) {
	table, ok := s.Tables.GetTable(tableID)
	if !ok {
		return domain.Snapshot{}, ErrTableNotFound
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	return table.Game.Snapshot(), nil
}

// Drop plays column for whoever's turn it is. A rejected drop returns the
// unchanged state together with a domain.Error.
func (s *Service) Drop(tableID string, column int) (domain.Snapshot, error) {
	table, ok := s.Tables.GetTable(tableID)
	if !ok {
		return domain.Snapshot{}, ErrTableNotFound
	}

	table.mu.Lock()
	now := s.Tables.now()
	table.LastActivity = now

	snapshot, err := table.Game.Drop(column)
	if err != nil {
		table.mu.Unlock()
		var domainErr domain.Error
		if errors.As(err, &domainErr) {
			log.WithFields(log.Fields{"table": tableID, "column": column, "code": domainErr.Code()}).
				Debug("[TABLE] Drop rejected")
		}
		return snapshot, err
	}

	log.WithFields(log.Fields{
		"table":  tableID,
		"column": column,
		"row":    snapshot.LastMove.Row,
		"player": snapshot.LastMove.Player.String(),
	}).Debug("[TABLE] Disc placed")

	if snapshot.Outcome.IsTerminal() {
		log.WithFields(log.Fields{
			"table":  tableID,
			"status": snapshot.Outcome.Status,
			"winner": snapshot.Outcome.Winner.String(),
			"moves":  snapshot.Moves,
		}).Info("[TABLE] Round finished")

		s.recordAsync(domain.RoundResult{
			TableID:    tableID,
			Status:     snapshot.Outcome.Status,
			Winner:     snapshot.Outcome.Winner,
			Moves:      snapshot.Moves,
			Grid:       snapshot.Grid,
			StartedAt:  table.StartedAt,
			FinishedAt: now,
		})
	}

	table.version++
	version := table.version
	table.mu.Unlock()

	s.notify(table, version, snapshot)
	return snapshot, nil
}

// Reset starts a new round on the table.
func (s *Service) Reset(tableID string) (domain.Snapshot, error) {
	table, ok := s.Tables.GetTable(tableID)
	if !ok {
		return domain.Snapshot{}, ErrTableNotFound
	}

	table.mu.Lock()
	now := s.Tables.now()
	table.Game.Reset()
	table.StartedAt = now
	table.LastActivity = now

	snapshot := table.Game.Snapshot()
	table.version++
	version := table.version
	table.mu.Unlock()

	log.WithField("table", tableID).Debug("[TABLE] Round reset")
	s.notify(table, version, snapshot)
	return snapshot, nil
}

// Close removes the table from memory.
func (s *Service) Close(tableID string) error {
	if err := s.Tables.RemoveTable(tableID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.TableClosed(tableID)
	}
	return nil
}

// EvictIdle closes every table untouched for longer than idle.
func (s *Service) EvictIdle(idle time.Duration) int {
	removed := s.Tables.CleanupIdleTables(idle)
	if s.notifier != nil {
		for _, id := range removed {
			s.notifier.TableClosed(id)
		}
	}
	return len(removed)
}

// Wait blocks until every pending archive write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// notify runs outside table.mu so a slow socket never holds up other moves.
// A state older than one already pushed is skipped.
func (s *Service) notify(table *Table, version uint64, snapshot domain.Snapshot) {
	if s.notifier == nil {
		return
	}

	table.notifyMu.Lock()
	defer table.notifyMu.Unlock()

	if version <= table.notified {
		return
	}
	table.notified = version
	s.notifier.NotifyState(table.ID, snapshot)
}

// Saves finished rounds in background to avoid blocking the mover
func (s *Service) recordAsync(result domain.RoundResult) {
	if s.recorder == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := s.recorder.Record(ctx, result); err != nil {
			log.WithField("table", result.TableID).Errorf("[TABLE] Error archiving round: %v", err)
			return
		}
		log.WithField("table", result.TableID).Debug("[TABLE] Round archived")
	}()
}
