package game

import (
	"errors"
	"sync"
	"time"

	"github.com/iamasit07/connect4-table/internal/domain"
	"github.com/iamasit07/connect4-table/pkg/uid"
	log "github.com/sirupsen/logrus"
)

var ErrTableNotFound = errors.New("table not found")

// Table hosts one hot-seat game. mu serialises every call into Game.
type Table struct {
	ID           string
	Game         *domain.Game
	CreatedAt    time.Time
	StartedAt    time.Time // start of the current round
	LastActivity time.Time
	mu           sync.Mutex

	// version counts state changes under mu; notified is the newest version
	// pushed to the notifier, under notifyMu.
	version  uint64
	notified uint64
	notifyMu sync.Mutex
}

func (t *Table) idleSince() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.LastActivity
}

// Manager keeps the live tables in memory.
type Manager struct {
	tables map[string]*Table
	mu     sync.RWMutex
	now    func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		tables: make(map[string]*Table),
		now:    time.Now,
	}
}

func (m *Manager) CreateTable() (*Table, error) {
	id, err := uid.GenerateTableID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	table := &Table{
		ID:           id,
		Game:         domain.NewGame(),
		CreatedAt:    now,
		StartedAt:    now,
		LastActivity: now,
	}

	m.mu.Lock()
	m.tables[id] = table
	m.mu.Unlock()

	log.WithField("table", id).Info("[TABLE] Created table")
	return table, nil
}

func (m *Manager) GetTable(id string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, exists := m.tables[id]
	return table, exists
}

func (m *Manager) RemoveTable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[id]; !exists {
		return ErrTableNotFound
	}
	delete(m.tables, id)
	log.WithField("table", id).Info("[TABLE] Removed table")
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// CleanupIdleTables drops every table untouched for longer than idle and
// returns the removed IDs.
func (m *Manager) CleanupIdleTables(idle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed []string
	for id, table := range m.tables {
		if now.Sub(table.idleSince()) > idle {
			delete(m.tables, id)
			removed = append(removed, id)
		}
	}

	if len(removed) > 0 {
		log.Infof("[TABLE] Memory cleanup: removed %d idle tables", len(removed))
	}
	return removed
}
