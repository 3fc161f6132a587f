package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/articulink/admin-dashboard/internal/utils"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"value": utils.Value[string],
	"is": func(a *string, b string) bool {
		return utils.Value(a) == b
	},
}

// parseTemplates parses every page once. Templates are named after their
// file.
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(TemplateFilesFS(), "*.html")
}

// PageData is the model shared by every page. Content holds the page specific
// data.
type PageData struct {
	AppName        string
	ActivePage     string
	PageTitle      string
	User           *sessions.UserProfile
	SessionExpires string
	Error          string
	Notice         string
	Content        any
	Body           template.HTML
}

func (s *Server) newPageData(r *http.Request, activePage, pageTitle string) PageData {
	data := PageData{
		AppName:    s.config.GetAppName(),
		ActivePage: activePage,
		PageTitle:  pageTitle,
		Error:      r.URL.Query().Get("error"),
		Notice:     r.URL.Query().Get("notice"),
	}
	if b := sessionFromContext(r); b != nil {
		data.User = b.user
		data.SessionExpires = tokenExpiry(b.store)
	}
	return data
}

// tokenExpiry shows when the access token stops working, for display only.
func tokenExpiry(store sessions.Store) string {
	raw, ok := store.Token()
	if !ok {
		return ""
	}
	claims, err := sessions.ParseClaims(raw)
	if err != nil || claims.ExpiresAt.IsZero() {
		return ""
	}
	return claims.ExpiresAt.Local().Format(time.Kitchen)
}

// renderPage renders contentTemplate into the shared layout.
func (s *Server) renderPage(w http.ResponseWriter, contentTemplate string, data PageData) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, contentTemplate, data); err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("Failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}
	data.Body = template.HTML(body.String())

	var page bytes.Buffer
	if err := s.templates.ExecuteTemplate(&page, "layout.html", data); err != nil {
		log.Err(err).Msg("Failed to render layout")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	_, _ = page.WriteTo(w)
}
