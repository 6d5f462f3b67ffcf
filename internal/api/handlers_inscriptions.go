package api

import (
	"errors"
	"net/http"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/pkg/httputil"
	"github.com/skicrew/inscriptions/internal/service/event"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// ListInscriptions returns the sheets filed against one event, optionally
// filtered by status.
func (h *Handlers) ListInscriptions(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}

	if _, err := h.events.Get(r.Context(), eventID); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			httputil.NotFound(w, "event not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	p := ParsePagination(r)
	sheets, total, err := h.inscriptions.ListByEvent(r.Context(), eventID, inscription.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		if errors.Is(err, inscription.ErrInvalidStatus) {
			httputil.BadRequest(w, "status must be open, validated or email_sent")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	if sheets == nil {
		sheets = []domain.Inscription{}
	}
	httputil.OK(w, NewPaginatedResponse(sheets, p, total))
}

// CreateInscription files a new sheet against an event. Status always
// starts open regardless of the payload.
func (h *Handlers) CreateInscription(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(w, r, "eventID")
	if !ok {
		return
	}

	var input inscription.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	sheet, err := h.inscriptions.Create(r.Context(), eventID, input)
	if err != nil {
		if errors.Is(err, inscription.ErrEventNotFound) {
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
	httputil.Created(w, sheet)
}

// GetInscription returns one sheet with its event and competitor list.
// ?gender=F|M restricts the competitor list.
func (h *Handlers) GetInscription(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	sheet, ev, err := h.inscriptions.GetWithEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			httputil.NotFound(w, "inscription not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	competitors, err := h.inscriptions.Competitors(r.Context(), id, r.URL.Query().Get("gender"))
	if err != nil {
		if errors.Is(err, inscription.ErrInvalidGender) {
			httputil.BadRequest(w, "gender must be F or M")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	if competitors == nil {
		competitors = []domain.Competitor{}
	}

	httputil.OK(w, map[string]interface{}{
		"inscription": sheet,
		"event":       ev,
		"competitors": competitors,
	})
}

// inscriptionUpdateRequest mirrors inscription.UpdateFields with JSON tags.
type inscriptionUpdateRequest struct {
	Label        *string `json:"label"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
}

// UpdateInscription applies a partial update and returns the refreshed
// sheet. Status is not writable here; use the /status route.
func (h *Handlers) UpdateInscription(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	var req inscriptionUpdateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := h.inscriptions.Update(r.Context(), id, inscription.UpdateFields{
		Label:        req.Label,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			httputil.NotFound(w, "inscription not found")
			return
		}
		if isStorageError(err) {
			respondSafeError(w, http.StatusInternalServerError, err)
			return
		}
		httputil.BadRequest(w, err.Error())
		return
	}

	sheet, err := h.inscriptions.Get(r.Context(), id)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.OK(w, sheet)
}

// DeleteInscription removes a sheet and its competitors.
func (h *Handlers) DeleteInscription(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	if err := h.inscriptions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			httputil.NotFound(w, "inscription not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.NoContent(w)
}

// UpdateInscriptionStatus writes the sheet's workflow status. Accepts any
// of the three known values in either direction.
func (h *Handlers) UpdateInscriptionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := h.inscriptions.UpdateStatus(r.Context(), id, domain.InscriptionStatus(req.Status))
	if err != nil {
		if errors.Is(err, inscription.ErrInvalidStatus) {
			httputil.BadRequest(w, "status must be open, validated or email_sent")
			return
		}
		if errors.Is(err, inscription.ErrNotFound) {
			httputil.NotFound(w, "inscription not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	sheet, err := h.inscriptions.Get(r.Context(), id)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.OK(w, sheet)
}
