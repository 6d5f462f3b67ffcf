package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/pdf"
	"github.com/skicrew/inscriptions/internal/pkg/httputil"
	"github.com/skicrew/inscriptions/internal/service/dispatch"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// maxAttachmentBytes caps the uploaded PDF at 10 MiB. SES rejects raw
// messages above 10 MB anyway.
const maxAttachmentBytes = 10 << 20

// EntryFormPDF renders the sheet's entry form and streams it as a PDF
// download. ?gender=F|M restricts the competitor table.
func (h *Handlers) EntryFormPDF(w http.ResponseWriter, r *http.Request) {
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

	data, err := pdf.RenderEntryForm(*ev, *sheet, competitors)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entryFormFilename(sheet)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// SendEntryForm emails the uploaded PDF to the organizer. Multipart form:
// "recipients" is a JSON array of addresses, "file" is the attachment,
// "message" is optional free text for the body.
func (h *Handlers) SendEntryForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	if !h.dispatches.Configured() {
		httputil.Error(w, http.StatusServiceUnavailable, "email sending is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes+64*1024)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		httputil.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	rawRecipients := r.FormValue("recipients")
	if rawRecipients == "" {
		httputil.BadRequest(w, "recipients is required")
		return
	}
	var recipients []string
	if err := json.Unmarshal([]byte(rawRecipients), &recipients); err != nil {
		httputil.BadRequest(w, "recipients must be a JSON array of email addresses")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = "entry-form.pdf"
	}

	d, err := h.dispatches.Send(r.Context(), id, dispatch.SendInput{
		Recipients:     recipients,
		Message:        r.FormValue("message"),
		AttachmentName: filename,
		AttachmentData: data,
	})
	if err != nil {
		switch {
		case errors.Is(err, inscription.ErrNotFound):
			httputil.NotFound(w, "inscription not found")
		case errors.Is(err, dispatch.ErrSendFailed):
			// The provider error is already logged and recorded on the
			// dispatch row; the client gets a sanitized message.
			httputil.BadGateway(w, "the email provider rejected the message")
		case errors.Is(err, dispatch.ErrNotConfigured):
			httputil.Error(w, http.StatusServiceUnavailable, "email sending is not configured")
		default:
			httputil.BadRequest(w, err.Error())
		}
		return
	}

	httputil.OK(w, map[string]interface{}{
		"success":  true,
		"dispatch": d,
	})
}

// ListDispatches returns the send history for a sheet, newest first.
func (h *Handlers) ListDispatches(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "inscriptionID")
	if !ok {
		return
	}

	if _, err := h.inscriptions.Get(r.Context(), id); err != nil {
		if errors.Is(err, inscription.ErrNotFound) {
			httputil.NotFound(w, "inscription not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}

	dispatches, err := h.dispatches.ListByInscription(r.Context(), id)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err)
		return
	}
	if dispatches == nil {
		dispatches = []domain.Dispatch{}
	}

	httputil.OK(w, map[string]interface{}{
		"dispatches": dispatches,
		"total":      len(dispatches),
	})
}

func entryFormFilename(sheet *domain.Inscription) string {
	return fmt.Sprintf("entry-form-%d.pdf", sheet.ID)
}
