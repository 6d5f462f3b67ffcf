package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/skicrew/inscriptions/internal/domain"
	"github.com/skicrew/inscriptions/internal/pkg/logger"
)

// Default templates used when the config does not override them. Dates are
// rendered European style (02.01.2006) via the format_date filter.
const (
	DefaultSubjectTemplate = "Inscription {{ event.title }} - {{ event.place }}, {{ event.start_date | format_date }}"

	DefaultBodyTemplate = `Hello,

Please find attached our entry form for {{ event.title }} in {{ event.place }} ({{ event.country }}).

Event dates: {{ event.start_date | format_date }}{% if event.multi_day %} - {{ event.end_date | format_date }}{% endif %}
{% if event.discipline != "" %}Discipline: {{ event.discipline }}
{% endif %}{% if message != "" %}
{{ message }}
{% endif %}
Best regards,
{{ inscription.contact_name }}
`
)

// Templates renders the email subject and body for entry-form dispatches.
// Templates are parsed once at startup; a broken override falls back to the
// built-in default so sends never fail on template syntax.
type Templates struct {
	engine  *liquid.Engine
	subject *liquid.Template
	body    *liquid.Template
}

// NewTemplates parses the configured subject and body templates.
func NewTemplates(subjectTemplate, bodyTemplate string) *Templates {
	engine := liquid.NewEngine()
	engine.RegisterFilter("format_date", formatDateFilter)
	engine.RegisterFilter("upcase", strings.ToUpper)
	engine.RegisterFilter("downcase", strings.ToLower)

	t := &Templates{engine: engine}
	t.subject = t.parseOrDefault("subject", subjectTemplate, DefaultSubjectTemplate)
	t.body = t.parseOrDefault("body", bodyTemplate, DefaultBodyTemplate)
	return t
}

func (t *Templates) parseOrDefault(name, source, fallback string) *liquid.Template {
	if source == "" {
		source = fallback
	}
	tpl, err := t.engine.ParseString(source)
	if err == nil {
		return tpl
	}
	logger.Warn("email template failed to parse, using default", "template", name, "error", err.Error())
	tpl, err = t.engine.ParseString(fallback)
	if err != nil {
		// The built-in templates are constants; a parse failure here is a bug.
		panic(fmt.Sprintf("default %s template does not parse: %v", name, err))
	}
	return tpl
}

// RenderSubject renders the email subject line for an inscription.
func (t *Templates) RenderSubject(ev domain.Event, ins domain.Inscription) (string, error) {
	out, err := t.subject.RenderString(bindings(ev, ins, ""))
	if err != nil {
		return "", fmt.Errorf("rendering subject: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RenderBody renders the email body. The optional message is the free-text
// note entered on the send form; empty means the block is omitted.
func (t *Templates) RenderBody(ev domain.Event, ins domain.Inscription, message string) (string, error) {
	out, err := t.body.RenderString(bindings(ev, ins, message))
	if err != nil {
		return "", fmt.Errorf("rendering body: %w", err)
	}
	return out, nil
}

func bindings(ev domain.Event, ins domain.Inscription, message string) map[string]interface{} {
	return map[string]interface{}{
		"event": map[string]interface{}{
			"title":      ev.Title,
			"place":      ev.Place,
			"country":    ev.Country,
			"venue":      ev.Venue,
			"start_date": ev.StartDate,
			"end_date":   ev.EndDate,
			"multi_day":  ev.MultiDay(),
			"discipline": ev.Discipline,
			"organizer":  ev.Organizer,
		},
		"inscription": map[string]interface{}{
			"label":         ins.Label,
			"status":        string(ins.Status),
			"contact_name":  ins.ContactName,
			"contact_email": ins.ContactEmail,
		},
		"message": strings.TrimSpace(message),
	}
}

func formatDateFilter(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format("02.01.2006")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("02.01.2006")
	case string:
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t.Format("02.01.2006")
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Format("02.01.2006")
		}
		return v
	default:
		return fmt.Sprintf("%v", value)
	}
}
