package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-starchart/internal/catalog"
	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/geocode"
)

var testStars = &catalog.Catalog{Stars: []catalog.StarRecord{
	{Name: "Polaris", RightAscension: "2h 31m 49s", Declination: "+89° 15′ 50″", ApparentMagnitude: 2.02, ParentConstellation: "Ursa Minor"},
	{Name: "Acrux", RightAscension: "12h 26m 35.9s", Declination: "−63° 5′ 57″", ApparentMagnitude: 0.76, ParentConstellation: "Crux"},
	{Name: "Betelgeuse", RightAscension: "5h 55m 10.3s", Declination: "+7° 24′ 25″", ApparentMagnitude: 0.5, ParentConstellation: "Orion"},
}}

var testTime = time.Date(2024, 1, 15, 3, 30, 0, 0, time.UTC)

func buildChart(t *testing.T, lat, lon, limit float64) *chart.Chart {
	t.Helper()
	svc := chart.NewService(testStars)
	loc := geocode.Location{Name: "site", LatDeg: lat, LonDeg: lon}
	c, err := svc.Chart(context.Background(), chart.Request{Location: &loc, Time: testTime, LimitingMagnitude: chart.Magnitude(limit)})
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	return c
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}

	if m.HasData() || m.HasStored() {
		t.Error("HasData/HasStored should be false initially")
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())
	c := buildChart(t, 40, -75, 8)

	m.Update(c, 100*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if snap.Current != c {
		t.Error("Snapshot Current doesn't match")
	}
	if snap.BuildDuration != 100*time.Millisecond {
		t.Errorf("BuildDuration = %v, want 100ms", snap.BuildDuration)
	}
	if snap.LastError != nil {
		t.Errorf("LastError = %v, want nil", snap.LastError)
	}
	// Acrux is cut from 40°N.
	if snap.Summary.Renderable != 2 || snap.Summary.Below != 1 {
		t.Errorf("summary = %+v", snap.Summary)
	}
}

func TestManager_UpdateWithError(t *testing.T) {
	m := NewManager(DefaultConfig())
	c := buildChart(t, 40, -75, 8)
	m.Update(c, time.Millisecond, nil)

	testErr := &testError{msg: "address not found"}
	m.Update(nil, 50*time.Millisecond, testErr)

	snap := m.Snapshot()
	if snap.Current != c {
		t.Error("failed request should keep the previous chart")
	}
	if snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}

	events := m.RecentEvents(1)
	if len(events) != 1 || events[0].Type != EventRequestFailed || events[0].Detail != "address not found" {
		t.Errorf("last event = %+v, want REQUEST_FAILED", events)
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	m := NewManager(Config{MaxHistoryLen: 3, MaxEvents: 10})

	for i := 0; i < 5; i++ {
		m.Update(buildChart(t, float64(i), 0, 8), 0, nil)
	}

	hist := m.History()
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	if hist[0].ChartID == hist[2].ChartID {
		t.Error("history entries should be distinct charts")
	}
	if hist[2].LimitingMagnitude != 8 || hist[2].Location != "site" {
		t.Errorf("last entry = %+v", hist[2])
	}
}

func TestManager_EventDetection(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(buildChart(t, 40, -75, 8), 0, nil)
	events := m.Snapshot().Events
	if len(events) != 1 || events[0].Type != EventChartBuilt {
		t.Fatalf("first chart events = %+v, want one CHART_BUILT", events)
	}

	// Same place, same limit: no change events.
	m.Update(buildChart(t, 40, -75, 8), 0, nil)
	if n := len(m.Snapshot().Events); n != 2 {
		t.Errorf("events after identical chart = %d, want 2", n)
	}

	m.Update(buildChart(t, -30, 20, 5), 0, nil)
	recent := m.RecentEvents(3)
	if len(recent) != 3 {
		t.Fatalf("RecentEvents(3) = %d", len(recent))
	}
	if recent[0].Type != EventLocationChanged || recent[1].Type != EventLimitChanged || recent[2].Type != EventChartBuilt {
		t.Errorf("event types = %s %s %s", recent[0].Type, recent[1].Type, recent[2].Type)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	m := NewManager(Config{MaxEvents: 4})

	for i := 0; i < 10; i++ {
		m.Update(nil, 0, &testError{msg: string(rune('a' + i))})
	}

	events := m.Snapshot().Events
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
	for i, want := range []string{"g", "h", "i", "j"} {
		if events[i].Detail != want {
			t.Errorf("event %d detail = %q, want %q", i, events[i].Detail, want)
		}
	}
}

func TestManager_StoreAndCompare(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m.Store() {
		t.Error("Store() with no chart should report false")
	}
	if _, ok := m.Compare(); ok {
		t.Error("Compare() without charts should report false")
	}

	north := buildChart(t, 40, -75, 8)
	m.Update(north, 0, nil)
	if !m.Store() || !m.HasStored() {
		t.Fatal("Store() failed")
	}

	// From the far south Polaris is cut and Acrux appears.
	south := buildChart(t, -35, 150, 8)
	m.Update(south, 0, nil)

	cmp, ok := m.Compare()
	if !ok {
		t.Fatal("Compare() not ok")
	}
	if len(cmp.Common) != 1 || cmp.Common[0] != "Betelgeuse" {
		t.Errorf("Common = %v", cmp.Common)
	}
	if len(cmp.OnlyCurrent) != 1 || cmp.OnlyCurrent[0] != "Acrux" {
		t.Errorf("OnlyCurrent = %v", cmp.OnlyCurrent)
	}
	if len(cmp.OnlyStored) != 1 || cmp.OnlyStored[0] != "Polaris" {
		t.Errorf("OnlyStored = %v", cmp.OnlyStored)
	}

	snap := m.Snapshot()
	if snap.Stored != north || snap.Current != south {
		t.Error("snapshot should carry both charts")
	}
	if snap.StoredSummary.Renderable != 2 {
		t.Errorf("StoredSummary.Renderable = %d", snap.StoredSummary.Renderable)
	}

	m.ClearStored()
	if m.HasStored() {
		t.Error("ClearStored() left a chart behind")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())
	charts := []*chart.Chart{buildChart(t, 40, -75, 8), buildChart(t, -35, 150, 8)}

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(charts[i%2], time.Duration(i)*time.Millisecond, nil)
			if i%10 == 0 {
				m.Store()
			}
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RefreshInterval()
				_ = m.History()
				_, _ = m.Compare()
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig())

	newInterval := 30 * time.Second
	m.SetRefreshInterval(newInterval)

	if m.RefreshInterval() != newInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), newInterval)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
