package notifier

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/models"
)

type fakeSource struct {
	records  map[string]*models.Record
	fetchErr map[string]bool
}

func (f *fakeSource) Fetch(_ context.Context, userID string) (*models.Record, error) {
	if f.fetchErr[userID] {
		return nil, errors.New("store unreachable")
	}
	if r, ok := f.records[userID]; ok {
		return r, nil
	}
	return models.DefaultRecord(), nil
}

func (f *fakeSource) ListIDs(_ context.Context) []string {
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	for id := range f.fetchErr {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type sendRecorder struct {
	mu       sync.Mutex
	messages map[string][]string
	failFor  map[string]bool
}

func newSendRecorder() *sendRecorder {
	return &sendRecorder{
		messages: make(map[string][]string),
		failFor:  make(map[string]bool),
	}
}

func (s *sendRecorder) send(channelID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[channelID] {
		return errors.New("channel gone")
	}
	s.messages[channelID] = append(s.messages[channelID], content)
	return nil
}

func optedIn(channel string, income int64) *models.Record {
	r := models.DefaultRecord()
	r.BaseIncome = income
	r.Settings.NotificationChannel = channel
	return r
}

func newTestNotifier(source RecordSource, send SendFunc) *Notifier {
	n := New(source, send, zap.NewNop(), Config{Hour: 8, Minute: 0, Location: time.UTC})
	n.now = func() time.Time {
		return time.Date(2025, time.June, 11, 8, 0, 0, 0, time.UTC)
	}
	return n
}

func TestSweepDeliversToOptedInOnly(t *testing.T) {
	source := &fakeSource{
		records: map[string]*models.Record{
			"alice": optedIn("chan-alice", 210000),
			"bob":   models.DefaultRecord(),
		},
		fetchErr: map[string]bool{"carol": true},
	}
	rec := newSendRecorder()
	n := newTestNotifier(source, rec.send)

	n.Sweep(context.Background())

	if got := len(rec.messages["chan-alice"]); got != 1 {
		t.Fatalf("alice got %d messages, want 1", got)
	}
	if !strings.Contains(rec.messages["chan-alice"][0], "Remaining this month:") {
		t.Errorf("message is not a projection: %q", rec.messages["chan-alice"][0])
	}

	m := n.MetricsSnapshot()
	if m.Sent != 1 || m.Skipped != 1 || m.Failed != 1 {
		t.Errorf("metrics = %+v, want sent=1 skipped=1 failed=1", m)
	}
	if m.Sweeps != 1 {
		t.Errorf("sweeps = %d, want 1", m.Sweeps)
	}
}

func TestSweepIsolatesSendFailures(t *testing.T) {
	source := &fakeSource{
		records: map[string]*models.Record{
			"alice": optedIn("chan-dead", 100),
			"bob":   optedIn("chan-bob", 100),
		},
	}
	rec := newSendRecorder()
	rec.failFor["chan-dead"] = true
	n := newTestNotifier(source, rec.send)

	n.Sweep(context.Background())

	if got := len(rec.messages["chan-bob"]); got != 1 {
		t.Errorf("bob got %d messages, want 1 despite alice's channel failing", got)
	}
	m := n.MetricsSnapshot()
	if m.Sent != 1 || m.Failed != 1 {
		t.Errorf("metrics = %+v, want sent=1 failed=1", m)
	}
}

func TestSweepSkipsWhenAlreadyRunning(t *testing.T) {
	source := &fakeSource{
		records: map[string]*models.Record{"alice": optedIn("chan-alice", 100)},
	}
	rec := newSendRecorder()
	n := newTestNotifier(source, rec.send)

	n.mu.Lock()
	n.sweeping = true
	n.mu.Unlock()

	n.Sweep(context.Background())

	if len(rec.messages) != 0 {
		t.Error("overlapping sweep must be a no-op")
	}
}

func TestNextFire(t *testing.T) {
	n := New(&fakeSource{}, func(string, string) error { return nil },
		zap.NewNop(), Config{Hour: 8, Minute: 0, Location: time.UTC})

	at := func(hour, minute int) time.Time {
		return time.Date(2025, time.June, 11, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{at(7, 59), at(8, 0)},
		{at(0, 0), at(8, 0)},
		{at(8, 0), at(8, 0).AddDate(0, 0, 1)},
		{at(8, 1), at(8, 0).AddDate(0, 0, 1)},
		{at(23, 30), at(8, 0).AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		if got := n.nextFire(tt.now); !got.Equal(tt.want) {
			t.Errorf("nextFire(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestEmptyListIsQuietCycle(t *testing.T) {
	rec := newSendRecorder()
	n := newTestNotifier(&fakeSource{}, rec.send)

	n.Sweep(context.Background())

	if len(rec.messages) != 0 {
		t.Error("no records should mean no messages")
	}
	if m := n.MetricsSnapshot(); m.Sweeps != 1 {
		t.Errorf("sweeps = %d, want 1", m.Sweeps)
	}
}
