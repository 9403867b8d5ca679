package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/server"
	"github.com/tmaekawa/nippo/internal/store/memory"
)

const testSecret = "test-secret-key-min-32-bytes-long!"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	mux := http.NewServeMux()
	server.New(memory.NewUserStore(), memory.NewReportStore(), issuer).Routes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loginClient(t *testing.T, srv *httptest.Server, username, password string) *Client {
	t.Helper()

	anon := NewClient(Config{BaseURL: srv.URL})
	_, err := anon.Register(t.Context(), username, password)
	require.NoError(t, err)

	result, err := anon.Login(t.Context(), username, password)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	return NewClient(Config{BaseURL: srv.URL, Token: result.Token})
}

func TestClientAuth(t *testing.T) {
	srv := newTestServer(t)

	t.Run("register then login", func(t *testing.T) {
		client := NewClient(Config{BaseURL: srv.URL})

		user, err := client.Register(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)

		result, err := client.Login(t.Context(), "alice", "secret1")
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)
		require.Equal(t, "alice", result.User.Username)
	})

	t.Run("duplicate username surfaces the server message", func(t *testing.T) {
		client := NewClient(Config{BaseURL: srv.URL})

		_, err := client.Register(t.Context(), "alice", "secret1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusConflict, apiErr.StatusCode)
		require.Equal(t, "Username already exists", apiErr.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		client := NewClient(Config{BaseURL: srv.URL})

		_, err := client.Login(t.Context(), "alice", "nope")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Invalid credentials", apiErr.Message)
	})

	t.Run("unreachable server returns a transport error", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := client.Login(t.Context(), "alice", "secret1")
		require.Error(t, err)
		var apiErr *APIError
		require.NotErrorAs(t, err, &apiErr)
	})
}

func TestClientReports(t *testing.T) {
	srv := newTestServer(t)
	client := loginClient(t, srv, "bob", "secret1")

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		created, err := client.CreateReport(t.Context(), ReportDraft{
			Title:   "Sprint kickoff",
			Content: "Planned the milestones.",
			Date:    date,
		})
		require.NoError(t, err)
		require.Equal(t, "bob", created.UserName)

		got, err := client.GetReport(t.Context(), created.ID.String())
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, "Sprint kickoff", got.Title)
	})

	t.Run("list filtered by author", func(t *testing.T) {
		reports, err := client.ListReports(t.Context(), "bob", 0)
		require.NoError(t, err)
		require.NotEmpty(t, reports)
		for _, report := range reports {
			require.Equal(t, "bob", report.UserName)
		}

		none, err := client.ListReports(t.Context(), "nobody", 0)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("update and delete", func(t *testing.T) {
		created, err := client.CreateReport(t.Context(), ReportDraft{
			Title:   "Draft",
			Content: "First pass.",
			Date:    date,
		})
		require.NoError(t, err)

		updated, err := client.UpdateReport(t.Context(), created.ID.String(), ReportDraft{
			Title:   "Final",
			Content: "Second pass.",
			Date:    date,
		})
		require.NoError(t, err)
		require.Equal(t, "Final", updated.Title)

		require.NoError(t, client.DeleteReport(t.Context(), created.ID.String()))

		_, err = client.GetReport(t.Context(), created.ID.String())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		anon := NewClient(Config{BaseURL: srv.URL})

		_, err := anon.ListReports(t.Context(), "", 0)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Authorization required", apiErr.Message)
	})
}
