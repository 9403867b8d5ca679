package server

import (
	"net/http"

	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/httpx"
	"github.com/tmaekawa/nippo/internal/store"
)

// Server assembles the JSON API: auth endpoints are public, everything under
// /api/reports requires a verified bearer token.
type Server struct {
	users   store.UserStore
	reports store.ReportStore
	issuer  *auth.TokenIssuer
}

// New creates the API server.
func New(users store.UserStore, reports store.ReportStore, issuer *auth.TokenIssuer) *Server {
	return &Server{users: users, reports: reports, issuer: issuer}
}

// Routes registers the API routes on the given mux.
func (s *Server) Routes(mux *http.ServeMux) {
	clientIP := httpx.WithClientIP()
	requireToken := auth.RequireToken(s.issuer)

	authHandler := NewAuthHandler(s.users, s.issuer)
	mux.Handle("/auth/login", clientIP(http.HandlerFunc(authHandler.Login)))
	mux.Handle("/auth/register", clientIP(http.HandlerFunc(authHandler.Register)))

	reportHandler := NewReportHandler(s.reports)
	mux.Handle("/api/reports", requireToken(http.HandlerFunc(reportHandler.Collection)))
	mux.Handle("/api/reports/", requireToken(http.HandlerFunc(reportHandler.Item)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, "ok")
	})
}
