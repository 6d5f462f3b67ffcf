package api

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/mailer"
	"github.com/skicrew/inscriptions/internal/service/event"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// memStore is a shared in-memory backing store for the repository fakes
// below. One store instance feeds all three repositories so FK-style
// relations behave like the real database.
type memStore struct {
	mu          sync.Mutex
	events      map[int64]domain.Event
	sheets      map[int64]domain.Inscription
	competitors map[int64]domain.Competitor
	dispatches  []domain.Dispatch
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		events:      make(map[int64]domain.Event),
		sheets:      make(map[int64]domain.Inscription),
		competitors: make(map[int64]domain.Competitor),
	}
}

func (s *memStore) addEvent(e domain.Event) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.events[e.ID] = e
	return e
}

func (s *memStore) addSheet(i domain.Inscription) domain.Inscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	i.ID = s.nextID
	if i.Status == "" {
		i.Status = domain.InscriptionOpen
	}
	s.sheets[i.ID] = i
	return i
}

func (s *memStore) addCompetitor(c domain.Competitor) domain.Competitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.competitors[c.ID] = c
	return c
}

func (s *memStore) sheet(id int64) domain.Inscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheets[id]
}

// eventRepo implements event.Repository over memStore.
type eventRepo struct{ s *memStore }

func (r *eventRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, filter event.ListFilter) ([]domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Event
	needle := strings.ToLower(filter.Search)
	for _, e := range r.s.events {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Place), needle) {
			continue
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartDate.Equal(all[j].StartDate) {
			return all[i].StartDate.Before(all[j].StartDate)
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	if filter.Offset >= len(all) {
		return []domain.Event{}, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (r *eventRepo) Create(ctx context.Context, e *domain.Event) (int64, error) {
	created := r.s.addEvent(*e)
	return created.ID, nil
}

func (r *eventRepo) Update(ctx context.Context, id int64, u event.UpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return event.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Place != nil {
		e.Place = *u.Place
	}
	if u.Country != nil {
		e.Country = *u.Country
	}
	if u.Venue != nil {
		e.Venue = *u.Venue
	}
	if u.StartDate != nil {
		e.StartDate, _ = time.Parse("2006-01-02", *u.StartDate)
	}
	if u.EndDate != nil {
		e.EndDate, _ = time.Parse("2006-01-02", *u.EndDate)
	}
	if u.Discipline != nil {
		e.Discipline = *u.Discipline
	}
	if u.Organizer != nil {
		e.Organizer = *u.Organizer
	}
	if u.ContactEmail != nil {
		e.ContactEmail = *u.ContactEmail
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	r.s.events[id] = e
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.s.events, id)
	for sid, sheet := range r.s.sheets {
		if sheet.EventID == id {
			delete(r.s.sheets, sid)
		}
	}
	return nil
}

func (r *eventRepo) StatusCounts(ctx context.Context, id int64) (*domain.EventStatusCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var counts domain.EventStatusCounts
	for _, sheet := range r.s.sheets {
		if sheet.EventID != id {
			continue
		}
		counts.Total++
		switch sheet.Status {
		case domain.InscriptionOpen:
			counts.Open++
		case domain.InscriptionValidated:
			counts.Validated++
		case domain.InscriptionEmailSent:
			counts.EmailSent++
		}
	}
	return &counts, nil
}

// sheetRepo implements inscription.Repository over memStore.
type sheetRepo struct{ s *memStore }

func (r *sheetRepo) Get(ctx context.Context, id int64) (*domain.Inscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.sheets[id]
	if !ok {
		return nil, inscription.ErrNotFound
	}
	for _, c := range r.s.competitors {
		if c.InscriptionID == id {
			i.CompetitorCount++
		}
	}
	return &i, nil
}

func (r *sheetRepo) GetWithEvent(ctx context.Context, id int64) (*domain.Inscription, *domain.Event, error) {
	i, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[i.EventID]
	if !ok {
		return nil, nil, inscription.ErrNotFound
	}
	return i, &e, nil
}

func (r *sheetRepo) ListByEvent(ctx context.Context, eventID int64, filter inscription.ListFilter) ([]domain.Inscription, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Inscription
	for _, i := range r.s.sheets {
		if i.EventID != eventID {
			continue
		}
		if filter.Status != "" && string(i.Status) != filter.Status {
			continue
		}
		all = append(all, i)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].ID < all[b].ID })
	total := len(all)
	if filter.Offset >= len(all) {
		return []domain.Inscription{}, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (r *sheetRepo) Create(ctx context.Context, i *domain.Inscription) (int64, error) {
	r.s.mu.Lock()
	if _, ok := r.s.events[i.EventID]; !ok {
		r.s.mu.Unlock()
		return 0, inscription.ErrEventNotFound
	}
	r.s.mu.Unlock()
	created := r.s.addSheet(*i)
	return created.ID, nil
}

func (r *sheetRepo) Update(ctx context.Context, id int64, u inscription.UpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.sheets[id]
	if !ok {
		return inscription.ErrNotFound
	}
	if u.Label != nil {
		i.Label = *u.Label
	}
	if u.ContactName != nil {
		i.ContactName = *u.ContactName
	}
	if u.ContactEmail != nil {
		i.ContactEmail = *u.ContactEmail
	}
	r.s.sheets[id] = i
	return nil
}

func (r *sheetRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sheets[id]; !ok {
		return inscription.ErrNotFound
	}
	delete(r.s.sheets, id)
	for cid, c := range r.s.competitors {
		if c.InscriptionID == id {
			delete(r.s.competitors, cid)
		}
	}
	return nil
}

func (r *sheetRepo) UpdateStatus(ctx context.Context, id int64, status domain.InscriptionStatus, sentAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.sheets[id]
	if !ok {
		return inscription.ErrNotFound
	}
	i.Status = status
	i.SentAt = sentAt
	r.s.sheets[id] = i
	return nil
}

func (r *sheetRepo) Competitors(ctx context.Context, inscriptionID int64, gender domain.Gender) ([]domain.Competitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Competitor
	for _, c := range r.s.competitors {
		if c.InscriptionID != inscriptionID {
			continue
		}
		if gender != "" && c.Gender != gender {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Points != all[b].Points {
			return all[a].Points < all[b].Points
		}
		return all[a].LastName < all[b].LastName
	})
	return all, nil
}

func (r *sheetRepo) GetCompetitor(ctx context.Context, id int64) (*domain.Competitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.competitors[id]
	if !ok {
		return nil, inscription.ErrCompetitorNotFound
	}
	return &c, nil
}

func (r *sheetRepo) AddCompetitor(ctx context.Context, c *domain.Competitor) (int64, error) {
	r.s.mu.Lock()
	if _, ok := r.s.sheets[c.InscriptionID]; !ok {
		r.s.mu.Unlock()
		return 0, inscription.ErrNotFound
	}
	r.s.mu.Unlock()
	created := r.s.addCompetitor(*c)
	return created.ID, nil
}

func (r *sheetRepo) UpdateCompetitor(ctx context.Context, id int64, u inscription.CompetitorUpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.competitors[id]
	if !ok {
		return inscription.ErrCompetitorNotFound
	}
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.Gender != nil {
		c.Gender = domain.Gender(*u.Gender)
	}
	if u.BirthYear != nil {
		c.BirthYear = *u.BirthYear
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Club != nil {
		c.Club = *u.Club
	}
	if u.License != nil {
		c.License = *u.License
	}
	if u.Points != nil {
		c.Points = *u.Points
	}
	r.s.competitors[id] = c
	return nil
}

func (r *sheetRepo) DeleteCompetitor(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.competitors[id]; !ok {
		return inscription.ErrCompetitorNotFound
	}
	delete(r.s.competitors, id)
	return nil
}

// dispatchRepo implements dispatch.Repository over memStore.
type dispatchRepo struct{ s *memStore }

func (r *dispatchRepo) Insert(ctx context.Context, d *domain.Dispatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.dispatches = append(r.s.dispatches, *d)
	return nil
}

func (r *dispatchRepo) ListByInscription(ctx context.Context, inscriptionID int64) ([]domain.Dispatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Dispatch
	for i := len(r.s.dispatches) - 1; i >= 0; i-- {
		if r.s.dispatches[i].InscriptionID == inscriptionID {
			out = append(out, r.s.dispatches[i])
		}
	}
	return out, nil
}

// fakeSender records messages instead of calling SES.
type fakeSender struct {
	mu   sync.Mutex
	fail bool
	sent []mailer.Message
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) (*mailer.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("MessageRejected: email address is not verified")
	}
	f.sent = append(f.sent, msg)
	return &mailer.SendResult{MessageID: "test-msg-1", SentAt: time.Now()}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// pdfStub is a minimal valid-enough payload for upload tests.
var pdfStub = append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x20}, 64)...)
