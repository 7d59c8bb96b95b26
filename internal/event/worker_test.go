package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shopcart/internal/domain"
	eventrepo "shopcart/internal/repository/event"
	"go.uber.org/zap"
)

type countingProcessor struct {
	mu   sync.Mutex
	seen []string
}

func (p *countingProcessor) Process(_ context.Context, ev OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, ev.EventID)
	return nil
}

func TestWorkerPoolProcessesAllSubmissions(t *testing.T) {
	proc := &countingProcessor{}
	pool := NewWorkerPool(3, proc, zap.NewNop())

	for i := 0; i < 50; i++ {
		pool.Submit(context.Background(), OrderPlaced{EventID: "ev", OrderID: "o"})
	}
	pool.Shutdown()

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if len(proc.seen) != 50 {
		t.Fatalf("expected 50 processed events, got %d", len(proc.seen))
	}
}

type memEventRepo struct {
	mu   sync.Mutex
	recs map[string]*eventrepo.Record
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{recs: make(map[string]*eventrepo.Record)}
}

func (m *memEventRepo) Create(_ context.Context, rec eventrepo.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r := rec
	m.recs[rec.ID] = &r
	return nil
}

func (m *memEventRepo) GetByID(_ context.Context, id string) (*eventrepo.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.recs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memEventRepo) MarkProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Processed = true
	return nil
}

func TestRecorderIsIdempotent(t *testing.T) {
	repo := newMemEventRepo()
	rec := NewRecorder(repo, zap.NewNop())
	ev := OrderPlaced{EventID: "ev-1", OrderID: "o-1", OwnerKey: "user-1", TotalCents: 100}

	if err := rec.Process(context.Background(), ev); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := rec.Process(context.Background(), ev); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), "ev-1")
	if err != nil || !stored.Processed {
		t.Fatalf("event not marked processed: %+v err=%v", stored, err)
	}
}

func TestRecorderPropagatesRepoErrors(t *testing.T) {
	rec := NewRecorder(&failingEventRepo{}, zap.NewNop())
	if err := rec.Process(context.Background(), OrderPlaced{EventID: "ev-1"}); err == nil {
		t.Fatal("expected error from failing repository")
	}
}

type failingEventRepo struct{}

func (f *failingEventRepo) Create(_ context.Context, _ eventrepo.Record) error {
	return errors.New("db down")
}

func (f *failingEventRepo) GetByID(_ context.Context, _ string) (*eventrepo.Record, error) {
	return nil, domain.ErrNotFound
}

func (f *failingEventRepo) MarkProcessed(_ context.Context, _ string) error {
	return errors.New("db down")
}
