package dash

import (
	"sync"
	"time"

	"Facturacion/api/boletas"
)

const snapshotTTL = 12 * time.Hour

// Snapshot is one session's view of the last ingested export: the full
// normalized listing plus the newest period it contains. All dashboard
// queries run against a snapshot, never against shared state, so two
// sessions uploading different files cannot see each other's numbers.
type Snapshot struct {
	Listado   []boletas.Boleta
	LastYear  int
	LastMonth int
	CreatedAt time.Time
}

// SessionManager keeps per-user snapshots. It implements
// boletas.SnapshotPublisher so the upload flow can hand over results.
type SessionManager struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

func NewSessionManager() *SessionManager {
	m := &SessionManager{snapshots: make(map[string]*Snapshot)}
	go m.cleanupLoop()
	return m
}

// Publish stores the listing for a user, deriving the newest period present.
func (m *SessionManager) Publish(userID string, listado []boletas.Boleta) {
	snap := &Snapshot{Listado: listado, CreatedAt: time.Now()}
	for _, b := range listado {
		if b.PeriodoAnio > snap.LastYear ||
			(b.PeriodoAnio == snap.LastYear && b.PeriodoMes > snap.LastMonth) {
			snap.LastYear = b.PeriodoAnio
			snap.LastMonth = b.PeriodoMes
		}
	}
	m.mu.Lock()
	m.snapshots[userID] = snap
	m.mu.Unlock()
}

func (m *SessionManager) Get(userID string) (*Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[userID]
	if !ok || time.Since(snap.CreatedAt) > snapshotTTL {
		return nil, false
	}
	return snap, true
}

func (m *SessionManager) Delete(userID string) {
	m.mu.Lock()
	delete(m.snapshots, userID)
	m.mu.Unlock()
}

func (m *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		for id, snap := range m.snapshots {
			if time.Since(snap.CreatedAt) > snapshotTTL {
				delete(m.snapshots, id)
			}
		}
		m.mu.Unlock()
	}
}
