package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/recruitify/internal/auth"
	"github.com/wolfeidau/recruitify/internal/client"
	"github.com/wolfeidau/recruitify/internal/models"
)

// fakeAPI serves the organizations and recruitment cycles endpoints from memory.
type fakeAPI struct {
	mu     sync.Mutex
	token  string
	orgs   []models.Organization
	cycles []models.RecruitmentCycle
	nextID int
	reject bool
}

func newFakeAPI(t *testing.T, token string) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{token: token}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/organizations", api.listOrganizations)
	mux.HandleFunc("POST /api/organizations/create", api.createOrganization)
	mux.HandleFunc("PATCH /api/organizations/{id}", api.updateOrganization)
	mux.HandleFunc("GET /api/organizations/{id}/recruitment-cycles", api.listCycles)
	mux.HandleFunc("POST /api/organizations/{id}/recruitment-cycles", api.createCycle)
	mux.HandleFunc("PATCH /api/recruitment-cycles/{id}", api.updateCycle)

	srv := httptest.NewServer(api.authenticate(mux))
	t.Cleanup(srv.Close)

	return api, srv
}

func (a *fakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		reject := a.reject
		a.mu.Unlock()

		if reject || r.Header.Get("Authorization") != "Bearer "+a.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *fakeAPI) id(prefix string) string {
	a.nextID++
	return fmt.Sprintf("%s-%d", prefix, a.nextID)
}

func (a *fakeAPI) listOrganizations(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Organization{}, a.orgs...))
}

func (a *fakeAPI) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	org := models.Organization{ID: a.id("org"), Name: req.Name}
	a.orgs = append(a.orgs, org)
	writeJSON(w, http.StatusCreated, org)
}

func (a *fakeAPI) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.orgs {
		if a.orgs[i].ID == r.PathValue("id") {
			a.orgs[i].Name = req.Name
			writeJSON(w, http.StatusOK, a.orgs[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (a *fakeAPI) listCycles(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cycles := []models.RecruitmentCycle{}
	for _, cycle := range a.cycles {
		if cycle.OrganizationID == r.PathValue("id") {
			cycles = append(cycles, cycle)
		}
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (a *fakeAPI) createCycle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	cycle := models.RecruitmentCycle{
		ID:             a.id("cycle"),
		Name:           req.Name,
		CreatedAt:      time.Now().UTC(),
		OrganizationID: r.PathValue("id"),
	}
	a.cycles = append(a.cycles, cycle)
	writeJSON(w, http.StatusCreated, cycle)
}

func (a *fakeAPI) updateCycle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.cycles {
		if a.cycles[i].ID == r.PathValue("id") {
			a.cycles[i].Name = req.Name
			writeJSON(w, http.StatusOK, a.cycles[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func createToken(t *testing.T, subject string) string {
	t.Helper()

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: subject + "@example.com",
		Name:  "Test User",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newGlobals(t *testing.T, serverURL string) (*Globals, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	return &Globals{
		Server:     serverURL,
		StateDir:   t.TempDir(),
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		Out:        out,
	}, out
}

func login(t *testing.T, globals *Globals, token string) {
	t.Helper()
	require.NoError(t, (&LoginCmd{Token: token}).Run(context.Background(), globals))
}

func TestLoginLogout(t *testing.T) {
	token := createToken(t, "u1")
	_, srv := newFakeAPI(t, token)
	globals, out := newGlobals(t, srv.URL)
	ctx := context.Background()

	err := (&WhoamiCmd{}).Run(ctx, globals)
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	assert.Contains(t, err.Error(), "recruitify login")

	login(t, globals, token)
	assert.Contains(t, out.String(), "Logged in as Test User")

	out.Reset()
	require.NoError(t, (&WhoamiCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "u1@example.com")

	out.Reset()
	require.NoError(t, (&LogoutCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Logged out Test User")

	out.Reset()
	require.NoError(t, (&LogoutCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Not logged in.")
}

func TestLogin_invalidToken(t *testing.T) {
	globals, _ := newGlobals(t, "http://127.0.0.1:1")

	err := (&LoginCmd{Token: "not-a-jwt"}).Run(context.Background(), globals)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestOrgAndCycleCommands(t *testing.T) {
	token := createToken(t, "u1")
	_, srv := newFakeAPI(t, token)
	globals, out := newGlobals(t, srv.URL)
	ctx := context.Background()

	login(t, globals, token)

	out.Reset()
	require.NoError(t, (&OrgListCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "No organizations found.")

	err := (&CycleListCmd{}).Run(ctx, globals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recruitify org select")

	out.Reset()
	require.NoError(t, (&OrgCreateCmd{Name: "Acme"}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Created organization Acme (org-1)")

	out.Reset()
	require.NoError(t, (&OrgListCmd{}).Run(ctx, globals))
	assert.Regexp(t, `org-1\s+Acme\s+\*`, out.String())

	out.Reset()
	require.NoError(t, (&OrgRenameCmd{Name: "Acme Corp"}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Renamed organization org-1 to Acme Corp")

	out.Reset()
	require.NoError(t, (&CycleCreateCmd{Name: "Fall"}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Created recruitment cycle Fall (cycle-2) in Acme Corp")

	out.Reset()
	require.NoError(t, (&CycleRenameCmd{ID: "cycle-2", Name: "Winter"}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Renamed recruitment cycle cycle-2 to Winter")

	out.Reset()
	require.NoError(t, (&CycleListCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Winter")

	// the cycle is not remembered between invocations
	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Acme Corp (org-1)")
	assert.Contains(t, out.String(), "Cycle:         (none)")

	err = (&OrgSelectCmd{ID: "missing"}).Run(ctx, globals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization not found")
}

func TestOrgSelect_persistsPerUser(t *testing.T) {
	tokenU1 := createToken(t, "u1")
	api, srv := newFakeAPI(t, tokenU1)
	api.orgs = []models.Organization{{ID: "a", Name: "Acme"}, {ID: "b", Name: "Beta"}}

	globals, out := newGlobals(t, srv.URL)
	ctx := context.Background()

	login(t, globals, tokenU1)
	require.NoError(t, (&OrgSelectCmd{ID: "b"}).Run(ctx, globals))

	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Beta (b)")

	// another user on the same machine starts with nothing selected
	tokenU2 := createToken(t, "u2")
	api.mu.Lock()
	api.token = tokenU2
	api.mu.Unlock()
	login(t, globals, tokenU2)

	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(ctx, globals))
	assert.Contains(t, out.String(), "Organization:  (none)")
}

func TestStatus_fetchFailure(t *testing.T) {
	token := createToken(t, "u1")
	api, srv := newFakeAPI(t, token)
	globals, _ := newGlobals(t, srv.URL)

	login(t, globals, token)

	api.mu.Lock()
	api.reject = true
	api.mu.Unlock()

	err := (&StatusCmd{}).Run(context.Background(), globals)
	require.ErrorIs(t, err, client.ErrFetch)
	assert.Contains(t, err.Error(), "recruitify login")
}

func TestShell(t *testing.T) {
	token := createToken(t, "u1")
	api, srv := newFakeAPI(t, token)
	api.orgs = []models.Organization{{ID: "a", Name: "Acme"}, {ID: "b", Name: "Beta"}}
	api.cycles = []models.RecruitmentCycle{{ID: "c1", Name: "Spring", OrganizationID: "b"}}

	globals, out := newGlobals(t, srv.URL)
	login(t, globals, token)

	globals.In = strings.NewReader(strings.Join([]string{
		"orgs",
		"cycles",
		"org b",
		"cycles",
		"cycle c1",
		"bogus",
		"cycle nope",
		"new-cycle Autumn intake",
		"status",
		"quit",
		"orgs",
	}, "\n"))

	out.Reset()
	require.NoError(t, (&ShellCmd{}).Run(context.Background(), globals))

	output := out.String()
	assert.Contains(t, output, "recruitify [-]> ")
	assert.Regexp(t, `b\s+Beta`, output)
	assert.Contains(t, output, "error: no organization selected")
	assert.Contains(t, output, "Now in organization Beta (b), cycle (none)")
	assert.Contains(t, output, "Spring")
	assert.Contains(t, output, "Now in organization Beta (b), cycle Spring (c1)")
	assert.Contains(t, output, `error: "bogus": unknown command`)
	assert.Contains(t, output, "error: recruitment cycle not found: nope")
	assert.Contains(t, output, "recruitify [Beta/Autumn intake]> ")

	t.Run("fetch failure ends the session", func(t *testing.T) {
		api.mu.Lock()
		api.reject = false
		api.mu.Unlock()

		globals.In = strings.NewReader("refresh\nstatus\n")

		// reject once the shell has loaded, so the refresh fails
		globals.Out = &rejectAfterFirstPrompt{api: api, buf: &bytes.Buffer{}}

		err := (&ShellCmd{}).Run(context.Background(), globals)
		require.ErrorIs(t, err, client.ErrFetch)
		assert.Contains(t, err.Error(), "recruitify login")
	})
}

// rejectAfterFirstPrompt flips the fake API to rejecting requests once the shell prompts.
type rejectAfterFirstPrompt struct {
	api *fakeAPI
	buf *bytes.Buffer
}

func (r *rejectAfterFirstPrompt) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "recruitify [") {
		r.api.mu.Lock()
		r.api.reject = true
		r.api.mu.Unlock()
	}
	return r.buf.Write(p)
}

func TestParseShellLine(t *testing.T) {
	tests := []struct {
		line    string
		want    shellCommand
		wantErr string
	}{
		{line: "", want: shellCommand{}},
		{line: "  orgs  ", want: shellCommand{name: "orgs"}},
		{line: "exit", want: shellCommand{name: "quit"}},
		{line: "org a", want: shellCommand{name: "org", arg: "a"}},
		{line: "new-org  Acme Corp ", want: shellCommand{name: "new-org", arg: "Acme Corp"}},
		{line: "org", wantErr: "usage: org <id>"},
		{line: "cycle a b", wantErr: "usage: cycle <id>"},
		{line: "new-cycle", wantErr: "usage: new-cycle <name>"},
		{line: "orgs now", wantErr: "orgs takes no arguments"},
		{line: "launch", wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseShellLine(tt.line)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
