package poll

import (
	"sync"
	"time"
)

// Metrics tracks poll engine activity
type Metrics struct {
	pollsCreated  int64
	pollsClosed   int64
	votesApplied  int64
	votesRejected int64
	lastUpdate    time.Time
	mu            sync.RWMutex
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementCreated increments the pollsCreated counter
func (m *Metrics) IncrementCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollsCreated++
	m.lastUpdate = time.Now()
}

// IncrementClosed increments the pollsClosed counter
func (m *Metrics) IncrementClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollsClosed++
	m.lastUpdate = time.Now()
}

// IncrementVotesApplied increments the votesApplied counter
func (m *Metrics) IncrementVotesApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votesApplied++
	m.lastUpdate = time.Now()
}

// IncrementVotesRejected increments the votesRejected counter
func (m *Metrics) IncrementVotesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votesRejected++
	m.lastUpdate = time.Now()
}

// GetStats returns the current engine statistics
func (m *Metrics) GetStats(activePolls int) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		ActivePolls:   activePolls,
		PollsCreated:  m.pollsCreated,
		PollsClosed:   m.pollsClosed,
		VotesApplied:  m.votesApplied,
		VotesRejected: m.votesRejected,
		LastUpdate:    m.lastUpdate,
	}
}
