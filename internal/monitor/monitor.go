// Package monitor tracks how long browser tabs stay active and fires a
// one-shot capture signal once a dwell threshold elapses. Tab lifecycle
// events arrive over the daemon API from the extension.
package monitor

import (
	"sync"
	"time"
)

// CaptureListener observes a dwell timer firing for a tab.
type CaptureListener func(tabID int, url string)

type monitoredTab struct {
	startTime time.Time
	url       string
	timer     *time.Timer
}

// TabMonitor keeps at most one pending dwell timer per tab. Listeners
// are invoked synchronously in registration order when a timer fires.
type TabMonitor struct {
	mu        sync.Mutex
	tabs      map[int]*monitoredTab
	listeners []CaptureListener
}

// New creates an empty monitor.
func New() *TabMonitor {
	return &TabMonitor{
		tabs: make(map[int]*monitoredTab),
	}
}

// OnCapture registers a listener for dwell-timer fires.
func (m *TabMonitor) OnCapture(fn CaptureListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// StartMonitoring arms a one-shot timer for the tab. Any existing timer
// for the same tab is cancelled first, so rapid restarts yield exactly
// one capture signal, dwellTime after the last call.
func (m *TabMonitor) StartMonitoring(tabID int, url string, dwellTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked(tabID)

	tab := &monitoredTab{
		startTime: time.Now(),
		url:       url,
	}
	tab.timer = time.AfterFunc(dwellTime, func() {
		m.fire(tabID, tab)
	})
	m.tabs[tabID] = tab
}

// StopMonitoring cancels the tab's timer and forgets it. Calling it for
// an untracked tab is a no-op.
func (m *TabMonitor) StopMonitoring(tabID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(tabID)
}

// StopAll cancels every pending timer. Used at shutdown.
func (m *TabMonitor) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tabID := range m.tabs {
		m.stopLocked(tabID)
	}
}

// MonitoredTabs returns the ids currently being tracked.
func (m *TabMonitor) MonitoredTabs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.tabs))
	for id := range m.tabs {
		ids = append(ids, id)
	}
	return ids
}

// DwellTime reports how long the tab has been monitored, or 0 if it is
// not tracked.
func (m *TabMonitor) DwellTime(tabID int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tab, ok := m.tabs[tabID]; ok {
		return time.Since(tab.startTime)
	}
	return 0
}

func (m *TabMonitor) stopLocked(tabID int) {
	if tab, ok := m.tabs[tabID]; ok {
		tab.timer.Stop()
		delete(m.tabs, tabID)
	}
}

// fire delivers the capture signal if this timer still owns the tab.
// A restart swaps the tab entry, so a stale timer that already started
// firing when Stop raced it must not emit.
func (m *TabMonitor) fire(tabID int, tab *monitoredTab) {
	m.mu.Lock()
	current, ok := m.tabs[tabID]
	if !ok || current != tab {
		m.mu.Unlock()
		return
	}
	delete(m.tabs, tabID)
	listeners := append([]CaptureListener(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(tabID, tab.url)
	}
}
