package api

import (
	"errors"
	"net/http"

	"github.com/skicrew/inscriptions/internal/pkg/httputil"
	"github.com/skicrew/inscriptions/internal/service/event"
)

// ListEvents returns a page of events, optionally filtered by a search term
// matched against title and place.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	events, total, err := h.events.List(r.Context(), event.ListFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(events, p, total))
}

// CreateEvent creates a new event.
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input event.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	ev, err := h.events.Create(r.Context(), input)
	if err != nil {
		if isStorageError(err) {
			respondSafeError(w, http.StatusInternalServerError, err)
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, ev)
}

// GetEvent returns one event plus per-status inscription counts for its
// detail view.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}

	ev, err := h.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			httputil.NotFound(w, "event not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	counts, err := h.events.StatusCounts(r.Context(), id)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	httputil.OK(w, map[string]interface{}{
		"event":        ev,
		"inscriptions": counts,
	})
}

// eventUpdateRequest mirrors event.UpdateFields with JSON tags. Absent
// fields stay nil and are not applied.
type eventUpdateRequest struct {
	Title        *string `json:"title"`
	Place        *string `json:"place"`
	Country      *string `json:"country"`
	Venue        *string `json:"venue"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Discipline   *string `json:"discipline"`
	Organizer    *string `json:"organizer"`
	ContactEmail *string `json:"contact_email"`
	Notes        *string `json:"notes"`
}

// UpdateEvent applies a partial update and returns the refreshed event.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}

	var req eventUpdateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := h.events.Update(r.Context(), id, event.UpdateFields{
		Title:        req.Title,
		Place:        req.Place,
		Country:      req.Country,
		Venue:        req.Venue,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Discipline:   req.Discipline,
		Organizer:    req.Organizer,
		ContactEmail: req.ContactEmail,
		Notes:        req.Notes,
	})
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			httputil.NotFound(w, "event not found")
			return
		}
		if isStorageError(err) {
			respondSafeError(w, http.StatusInternalServerError, err)
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}

	ev, err := h.events.Get(r.Context(), id)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.OK(w, ev)
}

// DeleteEvent removes an event. Sheets and competitors underneath it go
// with it via ON DELETE CASCADE.
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			httputil.NotFound(w, "event not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.NoContent(w)
}
