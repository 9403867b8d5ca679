package website

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Website serves the server-rendered pages: a public login/register page and
// session-guarded report pages. Pages share the stores with the JSON API but
// authenticate with an HttpOnly cookie instead of a bearer header.
type Website struct {
	users     store.UserStore
	reports   store.ReportStore
	issuer    *auth.TokenIssuer
	templates *template.Template
}

// New creates the website handler set.
func New(users store.UserStore, reports store.ReportStore, issuer *auth.TokenIssuer) (*Website, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Website{
		users:     users,
		reports:   reports,
		issuer:    issuer,
		templates: templates,
	}, nil
}

// Routes registers the page routes on the given mux.
func (w *Website) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/login", w.LoginPage)
	mux.HandleFunc("/register", w.RegisterForm)
	mux.HandleFunc("/logout", w.Logout)

	mux.HandleFunc("/{$}", w.RequireSession(w.Index))
	mux.HandleFunc("/reports/new", w.RequireSession(w.NewReport))
	mux.HandleFunc("/reports/{id}", w.RequireSession(w.ShowReport))
	mux.HandleFunc("/reports/{id}/edit", w.RequireSession(w.EditReport))
	mux.HandleFunc("/reports/{id}/delete", w.RequireSession(w.DeleteReport))
}

type pageData struct {
	Username string
	Error    string
	Notice   string
	Author   string
	Reports  []*models.Report
	Report   *models.Report
}

func (w *Website) render(rw http.ResponseWriter, name string, data pageData) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := w.templates.ExecuteTemplate(rw, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
	}
}

// LoginPage renders the login form on GET and performs the login on POST.
// This view is exempt from the session guard.
func (w *Website) LoginPage(rw http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := pageData{}
		switch r.URL.Query().Get("error_code") {
		case "expired":
			data.Error = "Your session has expired. Please log in again."
		case "invalid":
			data.Error = "Your session could not be verified. Please log in again."
		}
		if r.URL.Query().Get("registered") == "1" {
			data.Notice = "Account created. You can log in now."
		}
		w.render(rw, "login.html", data)

	case http.MethodPost:
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			w.render(rw, "login.html", pageData{Error: "Username and password are required"})
			return
		}

		user, err := w.users.GetByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				w.render(rw, "login.html", pageData{Error: "Invalid credentials"})
				return
			}
			http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ok, scheme := auth.VerifyPassword(password, user.Password)
		if !ok {
			w.render(rw, "login.html", pageData{Error: "Invalid credentials"})
			return
		}
		if scheme == auth.SchemePlaintext {
			w.rotatePlaintextPassword(r, user)
		}

		token, err := w.issuer.Issue(user.ID, user.Username)
		if err != nil {
			http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		setSessionCookie(rw, token, int(w.issuer.TTL().Seconds()))
		http.Redirect(rw, r, "/", http.StatusFound)

	default:
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (w *Website) rotatePlaintextPassword(r *http.Request, user *models.User) {
	log.Warn().Str("username", user.Username).Msg("stored password matched as plaintext, rotating to digest")

	digest, err := auth.HashPassword(user.Password)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("password rotation: hash failed")
		return
	}
	if err := w.users.UpdatePassword(r.Context(), user.ID, digest); err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("password rotation: update failed")
	}
}

// RegisterForm creates an account from the registration form.
func (w *Website) RegisterForm(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	switch {
	case username == "" || password == "":
		w.render(rw, "login.html", pageData{Error: "Username and password are required"})
		return
	case password != confirm:
		w.render(rw, "login.html", pageData{Error: "Passwords do not match"})
		return
	case len(password) < 6:
		w.render(rw, "login.html", pageData{Error: "Password must be at least 6 characters"})
		return
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:        id,
		Username:  username,
		Password:  digest,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			w.render(rw, "login.html", pageData{Error: "Username already exists"})
			return
		}
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(rw, r, "/login?registered=1", http.StatusFound)
}

// Logout clears the session cookie. Clearing an absent cookie is a no-op, so
// logging out twice is harmless.
func (w *Website) Logout(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	clearSessionCookie(rw)
	http.Redirect(rw, r, "/login", http.StatusFound)
}

// Index lists reports, optionally filtered by author.
func (w *Website) Index(rw http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	author := strings.TrimSpace(r.URL.Query().Get("author"))

	reports, err := w.reports.List(r.Context(), store.ListReportsOptions{Author: author})
	if err != nil {
		log.Error().Err(err).Msg("failed to list reports")
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.render(rw, "index.html", pageData{
		Username: identity.Username,
		Author:   author,
		Reports:  reports,
	})
}

// NewReport renders the creation form on GET and creates the report on POST.
func (w *Website) NewReport(rw http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if r.Method == http.MethodGet {
		w.render(rw, "form.html", pageData{Username: identity.Username})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	report, errMsg := w.reportFromForm(r, identity)
	if errMsg != "" {
		w.render(rw, "form.html", pageData{Username: identity.Username, Error: errMsg})
		return
	}

	if err := w.reports.Create(r.Context(), report); err != nil {
		log.Error().Err(err).Msg("failed to create report")
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(rw, r, "/", http.StatusFound)
}

func (w *Website) reportFromForm(r *http.Request, identity *auth.Identity) (*models.Report, string) {
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	dateStr := r.FormValue("date")

	if title == "" || content == "" || dateStr == "" {
		return nil, "All fields are required"
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, "Date must be in YYYY-MM-DD format"
	}

	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		return nil, "Invalid session"
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, "Internal error"
	}

	now := time.Now()
	return &models.Report{
		ID:        id,
		UserID:    userID,
		UserName:  identity.Username,
		Title:     title,
		Content:   content,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}, ""
}

// ShowReport renders a single report.
func (w *Website) ShowReport(rw http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	report, ok := w.lookupReport(rw, r)
	if !ok {
		return
	}

	w.render(rw, "report.html", pageData{Username: identity.Username, Report: report})
}

// EditReport renders the edit form on GET and applies the update on POST.
func (w *Website) EditReport(rw http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	report, ok := w.lookupReport(rw, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		w.render(rw, "form.html", pageData{Username: identity.Username, Report: report})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	updated, errMsg := w.reportFromForm(r, identity)
	if errMsg != "" {
		w.render(rw, "form.html", pageData{Username: identity.Username, Report: report, Error: errMsg})
		return
	}

	report.Title = updated.Title
	report.Content = updated.Content
	report.Date = updated.Date

	if err := w.reports.Update(r.Context(), report); err != nil {
		log.Error().Err(err).Msg("failed to update report")
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(rw, r, "/reports/"+report.ID.String(), http.StatusFound)
}

// DeleteReport removes a report and returns to the list.
func (w *Website) DeleteReport(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	report, ok := w.lookupReport(rw, r)
	if !ok {
		return
	}

	if err := w.reports.Delete(r.Context(), report.ID); err != nil && !errors.Is(err, store.ErrReportNotFound) {
		log.Error().Err(err).Msg("failed to delete report")
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(rw, r, "/", http.StatusFound)
}

func (w *Website) lookupReport(rw http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.NotFound(rw, r)
		return nil, false
	}

	report, err := w.reports.Get(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			http.NotFound(rw, r)
			return nil, false
		}
		log.Error().Err(err).Msg("failed to get report")
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	return report, true
}
