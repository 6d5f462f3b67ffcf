package api

import (
	"errors"
	"net/http"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/pkg/httputil"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// ListCompetitors returns the competitors on a sheet, ordered by points.
// ?gender=F|M restricts the list.
func (h *Handlers) ListCompetitors(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	competitors, err := h.inscriptions.Competitors(r.Context(), id, r.URL.Query().Get("gender"))
	if err != nil {
		switch {
		case errors.Is(err, inscription.ErrInvalidGender):
			httputil.BadRequest(w, "gender must be F or M")
		case errors.Is(err, inscription.ErrNotFound):
			httputil.NotFound(w, "inscription not found")
		default:
			respondSafeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	if competitors == nil {
		competitors = []domain.Competitor{}
	}

	httputil.OK(w, map[string]interface{}{
		"competitors": competitors,
		"total":       len(competitors),
	})
}

// AddCompetitor inserts a competitor row on a sheet.
func (h *Handlers) AddCompetitor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	var input inscription.CompetitorInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	c, err := h.inscriptions.AddCompetitor(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, inscription.ErrNotFound):
			httputil.NotFound(w, "inscription not found")
		case errors.Is(err, inscription.ErrInvalidGender):
			httputil.BadRequest(w, "gender must be F or M")
		case isStorageError(err):
			respondSafeError(w, http.StatusInternalServerError, err)
		default:
			httputil.BadRequest(w, err.Error())
		}
		return
	}
	httputil.Created(w, c)
}

// competitorUpdateRequest mirrors inscription.CompetitorUpdateFields with
// JSON tags.
type competitorUpdateRequest struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Gender    *string  `json:"gender"`
	BirthYear *int     `json:"birth_year"`
	Category  *string  `json:"category"`
	Club      *string  `json:"club"`
	License   *string  `json:"license"`
	Points    *float64 `json:"points"`
}

// UpdateCompetitor applies a partial update to a competitor row.
func (h *Handlers) UpdateCompetitor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "competitorID")
	if !ok {
		return
	}

	var req competitorUpdateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := h.inscriptions.UpdateCompetitor(r.Context(), id, inscription.CompetitorUpdateFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthYear: req.BirthYear,
		Category:  req.Category,
		Club:      req.Club,
		License:   req.License,
		Points:    req.Points,
	})
	if err != nil {
		switch {
		case errors.Is(err, inscription.ErrCompetitorNotFound):
			httputil.NotFound(w, "competitor not found")
		case errors.Is(err, inscription.ErrInvalidGender):
			httputil.BadRequest(w, "gender must be F or M")
		case isStorageError(err):
			respondSafeError(w, http.StatusInternalServerError, err)
		default:
			httputil.BadRequest(w, err.Error())
		}
		return
	}
	httputil.OK(w, map[string]interface{}{"updated": true})
}

// DeleteCompetitor removes a competitor row.
func (h *Handlers) DeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "competitorID")
	if !ok {
		return
	}

	if err := h.inscriptions.DeleteCompetitor(r.Context(), id); err != nil {
		if errors.Is(err, inscription.ErrCompetitorNotFound) {
			httputil.NotFound(w, "competitor not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	httputil.NoContent(w)
}
