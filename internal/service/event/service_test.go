package event_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/service/event"
)

// memRepo is an in-memory event repository for unit testing.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*domain.Event
	counts map[int64]*domain.EventStatusCounts
}

func newMemRepo() *memRepo {
	return &memRepo{events: make(map[int64]*domain.Event), counts: make(map[int64]*domain.EventStatusCounts)}
}

func (m *memRepo) Get(_ context.Context, id int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f event.ListFilter) ([]domain.Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for _, e := range m.events {
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) || f.Limit <= 0 {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}

func (m *memRepo) Create(_ context.Context, e *domain.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *e
	cp.ID = m.nextID
	m.events[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, id int64, u event.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return event.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Place != nil {
		e.Place = *u.Place
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memRepo) StatusCounts(_ context.Context, id int64) (*domain.EventStatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return nil, event.ErrNotFound
	}
	if c, ok := m.counts[id]; ok {
		cp := *c
		return &cp, nil
	}
	return &domain.EventStatusCounts{}, nil
}

func TestCreate(t *testing.T) {
	svc := event.NewService(newMemRepo())
	e, err := svc.Create(context.Background(), event.CreateInput{
		Title: "FIS Race Adelboden", Place: "Adelboden", Country: "SUI",
		StartDate: "2026-01-10", EndDate: "2026-01-11", Discipline: "Giant Slalom",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !e.MultiDay() {
		t.Fatal("expected multi-day event")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := event.NewService(newMemRepo())

	cases := []struct {
		name  string
		input event.CreateInput
	}{
		{"missing title", event.CreateInput{Place: "Adelboden", StartDate: "2026-01-10"}},
		{"missing place", event.CreateInput{Title: "Race", StartDate: "2026-01-10"}},
		{"bad start date", event.CreateInput{Title: "Race", Place: "Adelboden", StartDate: "10.01.2026"}},
		{"end before start", event.CreateInput{Title: "Race", Place: "Adelboden", StartDate: "2026-01-10", EndDate: "2026-01-09"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSingleDayDefaultsEndDate(t *testing.T) {
	svc := event.NewService(newMemRepo())
	e, err := svc.Create(context.Background(), event.CreateInput{
		Title: "City Slalom", Place: "Zagreb", StartDate: "2026-01-04",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !e.EndDate.Equal(e.StartDate) {
		t.Fatalf("expected end date defaulted to start date, got %v", e.EndDate)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := event.NewService(newMemRepo())
	_, err := svc.Get(context.Background(), 99)
	if err != event.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	repo := newMemRepo()
	svc := event.NewService(repo)
	e, _ := svc.Create(context.Background(), event.CreateInput{
		Title: "Race", Place: "Adelboden", StartDate: "2026-01-10",
	})

	bad := "not-a-date"
	if err := svc.Update(context.Background(), e.ID, event.UpdateFields{StartDate: &bad}); err == nil {
		t.Fatal("expected date validation error")
	}

	empty := ""
	if err := svc.Update(context.Background(), e.ID, event.UpdateFields{Title: &empty}); err == nil {
		t.Fatal("expected empty-title validation error")
	}

	place := "Wengen"
	if err := svc.Update(context.Background(), e.ID, event.UpdateFields{Place: &place}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := svc.Get(context.Background(), e.ID)
	if got.Place != "Wengen" {
		t.Fatalf("expected updated place, got %s", got.Place)
	}
}

func TestDelete(t *testing.T) {
	svc := event.NewService(newMemRepo())
	e, _ := svc.Create(context.Background(), event.CreateInput{
		Title: "Race", Place: "Adelboden", StartDate: "2026-01-10",
	})

	if err := svc.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := svc.Get(context.Background(), e.ID)
	if err != event.ErrNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListWithSearch(t *testing.T) {
	svc := event.NewService(newMemRepo())

	svc.Create(context.Background(), event.CreateInput{Title: "Adelboden GS", Place: "Adelboden", StartDate: "2026-01-10"})
	svc.Create(context.Background(), event.CreateInput{Title: "Wengen DH", Place: "Wengen", StartDate: "2026-01-17"})

	list, total, err := svc.List(context.Background(), event.ListFilter{Search: "adelboden", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 event, got %d (total %d)", len(list), total)
	}
	if list[0].Title != "Adelboden GS" {
		t.Fatalf("unexpected event: %s", list[0].Title)
	}
}
