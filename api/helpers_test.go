package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garnizeh/citizenhub/api"
	dbfs "github.com/garnizeh/citizenhub/db"
	"github.com/garnizeh/citizenhub/internal/advisor"
	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/complaints"
	dbpkg "github.com/garnizeh/citizenhub/internal/db"
	"github.com/garnizeh/citizenhub/internal/eligibility"
	"github.com/garnizeh/citizenhub/internal/repository/sqlite"
	"github.com/garnizeh/citizenhub/internal/seed"
	"github.com/garnizeh/citizenhub/internal/work"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

const (
	citizenA     = "123456781234"
	citizenACred = "1234"
	citizenB     = "987654325678"
	citizenBCred = "5678"
	puneAdmin    = "pune@gov.in"
	puneCred     = "pune-pw"
	delhiAdmin   = "delhi@gov.in"
	delhiCred    = "delhi-pw"
)

type stubCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	return s.reply, s.err
}

func (s *stubCompleter) Close() error { return nil }

type harness struct {
	router     http.Handler
	repo       *sqlite.SQLiteRepo
	complaints *complaints.Service
	tokens     *auth.Tokens
}

func newHarness(t *testing.T, c completion.Completer) *harness {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))

	repo := sqlite.New(d, nil)
	_, err = seed.Apply(ctx, repo, repo, seed.Fixture{
		People: []seed.PersonSeed{
			{AadhaarNo: citizenA, Name: "Asha", Credential: citizenACred},
			{AadhaarNo: citizenB, Name: "Ravi", Credential: citizenBCred},
		},
		Admins: []seed.AdminSeed{
			{Email: puneAdmin, Credential: puneCred, Location: "Pune"},
			{Email: delhiAdmin, Credential: delhiCred, Location: "Delhi"},
		},
	}, nil)
	require.NoError(t, err)

	store := catalog.NewStore(catalog.DefaultSchemes())
	tokens := auth.NewTokens("test-signing-key", time.Hour, auth.NewMemoryRevoker())
	complaintsSvc := complaints.NewService(repo, repo, repo, nil)

	router := api.SetupRoutes(api.Deps{
		Version:    "test",
		BuildTime:  "now",
		Ping:       func(ctx context.Context) error { return d.GetConn().PingContext(ctx) },
		Auth:       auth.NewService(repo, repo, tokens, nil),
		Complaints: complaintsSvc,
		Checker:    eligibility.NewChecker(c, store, time.Second, nil),
		Catalog:    store,
		Advisor:    advisor.New(c, time.Second, nil),
		Work:       work.NewService(store, repo, nil),
	})
	return &harness{router: router, repo: repo, complaints: complaintsSvc, tokens: tokens}
}

// do sends body as JSON (or verbatim when it is a string) and records the response.
func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type loginResponse struct {
	Succeeded bool   `json:"succeeded"`
	JWTToken  string `json:"jwtToken"`
	Error     string `json:"error"`
}

func (h *harness) loginCitizen(t *testing.T, aadhaar, cred string) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/auth_user", "", map[string]string{"aadharNo": aadhaar, "password": cred})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[loginResponse](t, w)
	require.True(t, resp.Succeeded)
	return resp.JWTToken
}

func (h *harness) loginAdmin(t *testing.T, email, cred string) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/auth_admin", "", map[string]string{"email": email, "password": cred})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[loginResponse](t, w).JWTToken
}

// runJobs drains the job queue through the complaint routing handler.
func (h *harness) runJobs(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	handler := h.complaints.RouteHandler()
	for {
		j, err := h.repo.FetchNext(ctx)
		require.NoError(t, err)
		if j == nil {
			return
		}
		require.NoError(t, handler(ctx, j))
		j.Status = "done"
		require.NoError(t, h.repo.UpdateJob(ctx, j))
	}
}

func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}
