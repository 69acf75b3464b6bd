// Package views renders the server-side HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	ShowsIndex  = "shows_index"
	ShowDetails = "show_details"
	ShowForm    = "show_form"
	ShowDelete  = "show_delete"
	BandsIndex  = "bands_index"
	BandDetails = "band_details"
	BandForm    = "band_form"
	BandDelete  = "band_delete"
	Login       = "login"
	Error       = "error"
)

// WeatherWidget is rendered without the layout.
const WeatherWidget = "weather"

var pageNames = []string{ShowsIndex, ShowDetails, ShowForm, ShowDelete, BandsIndex, BandDetails, BandForm, BandDelete, Login, Error}

var funcs = template.FuncMap{
	"formatDate": func(t time.Time) string { return t.Format("01/02/2006") },
	"formatTime": func(t time.Time) string { return t.Format("03:04 PM") },
	"inputDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	},
	"inputTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("15:04")
	},
	"add": func(a, b int) int { return a + b },
}

// Layout is the data every full page receives. Data is the page's own view model.
type Layout struct {
	Title     string
	Flash     string
	CSRFToken string
	Operator  bool
	Data      any
}

// Renderer executes parsed page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses every page template together with the shared layout.
func New(logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)+1), logger: logger}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	t, err := template.New(WeatherWidget).Funcs(funcs).ParseFS(templateFS, "templates/"+WeatherWidget+".html")
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", WeatherWidget, err)
	}
	r.pages[WeatherWidget] = t
	return r, nil
}

// Render writes a full page. The pending flash message is consumed.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	_, operator := middleware.UserIDFromContext(r.Context())
	layout := Layout{
		Title:     title,
		Flash:     helpers.PopFlash(w, r),
		CSRFToken: middleware.CSRFToken(r.Context()),
		Operator:  operator,
		Data:      data,
	}
	v.execute(w, r, status, name, "layout", layout)
}

// Partial writes a fragment without the layout.
func (v *Renderer) Partial(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	v.execute(w, r, status, name, name+".html", data)
}

func (v *Renderer) execute(w http.ResponseWriter, r *http.Request, status int, page, entry string, data any) {
	t, ok := v.pages[page]
	if !ok {
		v.logger.ErrorContext(r.Context(), "unknown template", "template", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, entry, data); err != nil {
		v.logger.ErrorContext(r.Context(), "render template", "template", page, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
