package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/phase"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{-5, DefaultLimit},
		{0, DefaultLimit},
		{1, 1},
		{50, 50},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.expected {
			t.Errorf("ClampLimit(%d) = %d, expected %d", tt.in, got, tt.expected)
		}
	}
}

func TestSQLiteRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 21, 4, 0, 0, 0, time.UTC)

	seq := []phase.Label{phase.Night, phase.Dawn, phase.Sunrise, phase.Morning, phase.Day}
	for i := 1; i < len(seq); i++ {
		err := store.Record(ctx, Transition{
			ID:        string(rune('a' + i)),
			Sensor:    "home",
			At:        base.Add(time.Duration(i) * 30 * time.Minute),
			From:      seq[i-1],
			To:        seq[i],
			Elevation: float64(i),
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	if err := store.Record(ctx, Transition{ID: "other", Sensor: "cabin", At: base, From: phase.Unknown, To: phase.Night}); err != nil {
		t.Fatalf("Record other sensor: %v", err)
	}

	got, err := store.Recent(ctx, "home", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Recent returned %d transitions, expected 4", len(got))
	}
	if got[0].To != phase.Day || got[0].From != phase.Morning {
		t.Errorf("newest = %v -> %v, expected morning -> day", got[0].From, got[0].To)
	}
	if got[3].To != phase.Dawn {
		t.Errorf("oldest = %v, expected dawn", got[3].To)
	}
	if !got[0].At.Equal(base.Add(2*time.Hour)) || got[0].At.Location() != time.UTC {
		t.Errorf("newest at = %v, expected %v in UTC", got[0].At, base.Add(2*time.Hour))
	}
	if got[0].Elevation != 4 {
		t.Errorf("newest elevation = %v, expected 4", got[0].Elevation)
	}

	limited, err := store.Recent(ctx, "home", 2)
	if err != nil {
		t.Fatalf("Recent limited: %v", err)
	}
	if len(limited) != 2 || limited[1].To != phase.Morning {
		t.Errorf("Recent(limit 2) = %+v", limited)
	}

	none, err := store.Recent(ctx, "nowhere", 10)
	if err != nil {
		t.Fatalf("Recent unknown sensor: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Recent unknown sensor = %#v, expected empty slice", none)
	}
}

func TestSQLiteDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	tr := Transition{ID: "x", Sensor: "home", At: time.Now(), From: phase.Night, To: phase.Dawn}
	if err := store.Record(ctx, tr); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, tr); err == nil {
		t.Error("expected an error recording a duplicate id")
	}
}

type memoryStore struct {
	mu          sync.Mutex
	transitions []Transition
	err         error
}

func (m *memoryStore) Record(_ context.Context, t Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.transitions = append(m.transitions, t)
	return nil
}

func (m *memoryStore) Recent(context.Context, string, int) ([]Transition, error) {
	return nil, nil
}

func (m *memoryStore) Close() error { return nil }

func TestRecorder(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, zap.NewNop().Sugar())
	ctx := context.Background()
	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	dawn := sensor.State{Name: "home", Label: phase.Dawn, Attributes: &sensor.Attributes{Elevation: -2, Rising: true}, LastUpdated: at}
	sunrise := sensor.State{Name: "home", Label: phase.Sunrise, Attributes: &sensor.Attributes{Elevation: 0.5, Rising: true}, LastUpdated: at.Add(time.Minute)}

	rec.OnUpdate(ctx, sensor.State{Name: "home", Label: phase.Unknown}, dawn)
	if len(store.transitions) != 0 {
		t.Fatalf("leaving unknown at startup recorded %d transitions, expected none", len(store.transitions))
	}

	rec.OnUpdate(ctx, dawn, dawn)
	rec.OnUpdate(ctx, dawn, sunrise)
	rec.OnUpdate(ctx, sunrise, dawn)

	if len(store.transitions) != 2 {
		t.Fatalf("recorded %d transitions, expected 2", len(store.transitions))
	}
	first := store.transitions[0]
	if first.From != phase.Dawn || first.To != phase.Sunrise {
		t.Errorf("first transition = %v -> %v, expected dawn -> sunrise", first.From, first.To)
	}
	if first.Elevation != 0.5 || !first.At.Equal(sunrise.LastUpdated) || first.Sensor != "home" {
		t.Errorf("first transition = %+v", first)
	}
	if first.ID == "" || first.ID == store.transitions[1].ID {
		t.Errorf("transition ids %q and %q should be unique and non-empty", first.ID, store.transitions[1].ID)
	}

	store.err = errors.New("disk full")
	rec.OnUpdate(ctx, dawn, sunrise)
	if len(store.transitions) != 2 {
		t.Errorf("failed write should not be stored")
	}
}
