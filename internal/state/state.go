// Package state provides thread-safe state management for the application.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-starchart/internal/chart"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventChartBuilt      EventType = "CHART_BUILT"
	EventLocationChanged EventType = "LOCATION_CHANGED"
	EventLimitChanged    EventType = "LIMIT_CHANGED"
	EventStored          EventType = "STORED"
	EventRequestFailed   EventType = "REQUEST_FAILED"
)

// Event records a change of the displayed chart.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ChartID   string    `json:"chart_id,omitempty"`
	Location  string    `json:"location,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// HistoryEntry is a compact record of a chart that was displayed.
type HistoryEntry struct {
	ChartID           string
	Title             string
	Location          string
	LimitingMagnitude float64
	Renderable        int
	BuiltAt           time.Time
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current       *chart.Chart
	summary       chart.Summary
	lastUpdate    time.Time
	lastError     error
	buildDuration time.Duration

	// Chart kept for side-by-side comparison
	stored        *chart.Chart
	storedSummary chart.Summary

	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int

	// RefreshInterval drives live mode, where the chart follows the clock.
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   30,
		MaxEvents:       50,
		RefreshInterval: time.Minute,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Update records the outcome of a chart request. A nil chart keeps the
// previous one on display and only records the error.
func (m *Manager) Update(c *chart.Chart, buildDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastUpdate = now
	m.lastError = err
	m.buildDuration = buildDuration

	if err != nil {
		m.addEvent(Event{Type: EventRequestFailed, Timestamp: now, Detail: err.Error()})
	}
	if c == nil {
		return
	}

	m.detectEvents(c, now)

	m.current = c
	m.summary = chart.Summarize(c.Table)

	m.history = append(m.history, HistoryEntry{
		ChartID:           c.ID.String(),
		Title:             c.Title(),
		Location:          c.Location.Name,
		LimitingMagnitude: c.Table.LimitingMagnitude,
		Renderable:        m.summary.Renderable,
		BuiltAt:           c.GeneratedAt,
	})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// detectEvents compares the incoming chart with the current one.
func (m *Manager) detectEvents(c *chart.Chart, now time.Time) {
	id := c.ID.String()

	if m.current != nil {
		prev := m.current
		if prev.Location != c.Location {
			m.addEvent(Event{
				Type:      EventLocationChanged,
				Timestamp: now,
				ChartID:   id,
				Location:  c.Location.Name,
				Detail:    prev.Location.Name + " -> " + c.Location.Name,
			})
		}
		if prev.Table.LimitingMagnitude != c.Table.LimitingMagnitude {
			m.addEvent(Event{
				Type:      EventLimitChanged,
				Timestamp: now,
				ChartID:   id,
				Location:  c.Location.Name,
				Detail:    string(c.MagnitudeSource),
			})
		}
	}

	m.addEvent(Event{
		Type:      EventChartBuilt,
		Timestamp: now,
		ChartID:   id,
		Location:  c.Location.Name,
	})
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Store keeps the current chart for comparison. It reports false when
// there is nothing to store.
func (m *Manager) Store() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}
	m.stored = m.current
	m.storedSummary = m.summary
	m.addEvent(Event{
		Type:      EventStored,
		Timestamp: time.Now(),
		ChartID:   m.current.ID.String(),
		Location:  m.current.Location.Name,
	})
	return true
}

// ClearStored drops the comparison chart.
func (m *Manager) ClearStored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	m.storedSummary = chart.Summary{}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Current       *chart.Chart
	Summary       chart.Summary
	Stored        *chart.Chart
	StoredSummary chart.Summary
	LastUpdate    time.Time
	LastError     error
	BuildDuration time.Duration
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state. Charts are
// shared, not copied; they are never modified after Update.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Current:       m.current,
		Summary:       m.summary,
		Stored:        m.stored,
		StoredSummary: m.storedSummary,
		LastUpdate:    m.lastUpdate,
		LastError:     m.lastError,
		BuildDuration: m.buildDuration,
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// History returns the displayed charts, oldest first.
func (m *Manager) History() []HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// Comparison lists how the renderable stars of the current and stored
// charts differ.
type Comparison struct {
	Common      []string
	OnlyCurrent []string
	OnlyStored  []string
}

// Compare diffs the current chart against the stored one. ok is false
// unless both exist.
func (m *Manager) Compare() (cmp Comparison, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || m.stored == nil {
		return Comparison{}, false
	}

	cur := renderableNames(m.current)
	old := renderableNames(m.stored)

	for name := range cur {
		if old[name] {
			cmp.Common = append(cmp.Common, name)
		} else {
			cmp.OnlyCurrent = append(cmp.OnlyCurrent, name)
		}
	}
	for name := range old {
		if !cur[name] {
			cmp.OnlyStored = append(cmp.OnlyStored, name)
		}
	}
	sort.Strings(cmp.Common)
	sort.Strings(cmp.OnlyCurrent)
	sort.Strings(cmp.OnlyStored)
	return cmp, true
}

func renderableNames(c *chart.Chart) map[string]bool {
	names := make(map[string]bool)
	for _, r := range c.Table.Renderable() {
		names[r.Star.Name] = true
	}
	return names
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a chart has been built.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// HasStored reports whether a comparison chart is held.
func (m *Manager) HasStored() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stored != nil
}
