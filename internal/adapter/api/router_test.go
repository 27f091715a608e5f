package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/adapter/metrics"
	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/domain/mocks"
	"github.com/user/notes-saas/internal/pkg/config"
	"github.com/user/notes-saas/internal/usecase"
	"github.com/user/notes-saas/pkg/util"
)

// Prometheus collectors register globally, so they are created once for the
// whole test binary.
var testMetrics = metrics.NewAPIMetrics()

type testEnv struct {
	router     http.Handler
	noteRepo   *mocks.MockNoteRepository
	tenantRepo *mocks.MockTenantRepository
}

// newTestEnv wires the full router against in-memory repositories. The
// seeded world mirrors the demo data: acme on the free plan, globex on pro.
func newTestEnv(t *testing.T, limiter middleware.RateLimiter) *testEnv {
	t.Helper()

	hash, err := util.HashPassword("password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	acme := &domain.Tenant{ID: uuid.New(), Name: "Acme Corporation", Slug: "acme", Plan: domain.PlanFree}
	globex := &domain.Tenant{ID: uuid.New(), Name: "Globex Corporation", Slug: "globex", Plan: domain.PlanPro}

	account := func(email string, role domain.Role, tenant *domain.Tenant) *domain.Account {
		return &domain.Account{
			User: domain.User{
				ID:           uuid.New(),
				TenantID:     tenant.ID,
				Email:        email,
				PasswordHash: hash,
				Role:         role,
			},
			Tenant: *tenant,
		}
	}

	userRepo := &mocks.MockUserRepository{Accounts: []*domain.Account{
		account("admin@acme.test", domain.RoleAdmin, acme),
		account("user@acme.test", domain.RoleMember, acme),
		account("admin@globex.test", domain.RoleAdmin, globex),
	}}
	tenantRepo := &mocks.MockTenantRepository{Tenants: []*domain.Tenant{acme, globex}}
	noteRepo := &mocks.MockNoteRepository{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}}

	router := NewRouter(
		cfg,
		logger,
		testMetrics,
		limiter,
		usecase.NewAuthService(userRepo, "test-secret", time.Hour),
		usecase.NewNoteService(noteRepo, 3),
		usecase.NewTenantService(tenantRepo, userRepo, noteRepo, 3),
	)

	return &testEnv{router: router, noteRepo: noteRepo, tenantRepo: tenantRepo}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body %s", email, rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))

	t.Run("Correct Credentials", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "admin@acme.test",
			"password": "password",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Token string `json:"token"`
			User  struct {
				Email  string `json:"email"`
				Role   string `json:"role"`
				Tenant struct {
					Slug string `json:"slug"`
					Plan string `json:"plan"`
				} `json:"tenant"`
			} `json:"user"`
		}
		decode(t, rec, &body)
		if body.Token == "" {
			t.Error("expected a token")
		}
		if body.User.Role != "admin" || body.User.Tenant.Slug != "acme" {
			t.Errorf("unexpected identity: %+v", body.User)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "admin@acme.test",
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("Missing Fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@acme.test"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAuthMe(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))

	t.Run("Reports Role And Tenant", func(t *testing.T) {
		token := env.login(t, "admin@acme.test")
		rec := env.do(t, http.MethodGet, "/auth/me", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			User struct {
				Role   string `json:"role"`
				Tenant struct {
					Slug string `json:"slug"`
				} `json:"tenant"`
			} `json:"user"`
		}
		decode(t, rec, &body)
		if body.User.Role != "admin" || body.User.Tenant.Slug != "acme" {
			t.Errorf("unexpected identity: %+v", body.User)
		}
	})

	t.Run("No Token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/me", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("Garbage Token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/me", "garbage", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))
	token := env.login(t, "user@acme.test")

	var noteID string

	t.Run("Create Round Trip", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/notes", token, map[string]string{"title": "T", "content": "C"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Note domain.Note `json:"note"`
		}
		decode(t, rec, &body)
		if body.Note.Title != "T" || body.Note.Content != "C" {
			t.Errorf("note fields = %q/%q, want T/C", body.Note.Title, body.Note.Content)
		}
		if body.Note.ID == uuid.Nil || body.Note.CreatedAt.IsZero() {
			t.Error("expected server-set id and timestamps")
		}
		noteID = body.Note.ID.String()

		get := env.do(t, http.MethodGet, "/notes/"+noteID, token, nil)
		if get.Code != http.StatusOK {
			t.Fatalf("get status = %d, want 200", get.Code)
		}
		var fetched struct {
			Note domain.Note `json:"note"`
		}
		decode(t, get, &fetched)
		if fetched.Note.Title != "T" || fetched.Note.Content != "C" {
			t.Error("fetched note differs from created note")
		}
	})

	t.Run("Missing Title", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/notes", token, map[string]string{"content": "C"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("Update", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/notes/"+noteID, token, map[string]string{"title": "T2", "content": "C2"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Note domain.Note `json:"note"`
		}
		decode(t, rec, &body)
		if body.Note.Title != "T2" {
			t.Errorf("title = %q, want T2", body.Note.Title)
		}
	})

	t.Run("Update Without Title", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/notes/"+noteID, token, map[string]string{"content": "C3"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("List", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/notes", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Count int `json:"count"`
		}
		decode(t, rec, &body)
		if body.Count != 1 {
			t.Errorf("count = %d, want 1", body.Count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/notes/"+noteID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		get := env.do(t, http.MethodGet, "/notes/"+noteID, token, nil)
		if get.Code != http.StatusNotFound {
			t.Fatalf("get after delete: status = %d, want 404", get.Code)
		}
	})

	t.Run("Unparseable ID", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/notes/not-a-uuid", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestQuotaEnforcement(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))
	free := env.login(t, "user@acme.test")
	pro := env.login(t, "admin@globex.test")

	t.Run("Free Plan Third Succeeds Fourth Fails", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			rec := env.do(t, http.MethodPost, "/notes", free, map[string]string{"title": fmt.Sprintf("note %d", i+1)})
			if rec.Code != http.StatusCreated {
				t.Fatalf("note %d: status = %d, want 201", i+1, rec.Code)
			}
		}

		rec := env.do(t, http.MethodPost, "/notes", free, map[string]string{"title": "note 4"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}

		var body struct {
			Error   string `json:"error"`
			Limit   int    `json:"limit"`
			Current int    `json:"current"`
		}
		decode(t, rec, &body)
		if body.Limit != 3 || body.Current != 3 {
			t.Errorf("quota body = %d/%d, want 3/3", body.Current, body.Limit)
		}
	})

	t.Run("Stats At Limit", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/notes/stats/limit", free, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Current   int  `json:"current"`
			Limit     *int `json:"limit"`
			Remaining *int `json:"remaining"`
			Unlimited bool `json:"unlimited"`
			CanCreate bool `json:"canCreate"`
		}
		decode(t, rec, &body)
		if body.Current != 3 || body.Limit == nil || *body.Limit != 3 {
			t.Errorf("current/limit = %d/%v, want 3/3", body.Current, body.Limit)
		}
		if body.Remaining == nil || *body.Remaining != 0 {
			t.Errorf("remaining = %v, want 0", body.Remaining)
		}
		if body.CanCreate || body.Unlimited {
			t.Error("free tenant at limit must not be able to create")
		}
	})

	t.Run("Pro Plan Unbounded", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			rec := env.do(t, http.MethodPost, "/notes", pro, map[string]string{"title": fmt.Sprintf("note %d", i+1)})
			if rec.Code != http.StatusCreated {
				t.Fatalf("note %d: status = %d, want 201", i+1, rec.Code)
			}
		}

		rec := env.do(t, http.MethodGet, "/notes/stats/limit", pro, nil)
		var body struct {
			Limit     *int `json:"limit"`
			Unlimited bool `json:"unlimited"`
			CanCreate bool `json:"canCreate"`
		}
		decode(t, rec, &body)
		if body.Limit != nil || !body.Unlimited || !body.CanCreate {
			t.Errorf("unexpected pro stats: %+v", body)
		}
	})
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))
	acme := env.login(t, "user@acme.test")
	globex := env.login(t, "admin@globex.test")

	rec := env.do(t, http.MethodPost, "/notes", acme, map[string]string{"title": "secret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var created struct {
		Note domain.Note `json:"note"`
	}
	decode(t, rec, &created)
	noteID := created.Note.ID.String()

	// Cross-tenant access answers 404, never 403: existence must not leak.
	for _, tc := range []struct {
		name   string
		method string
		body   any
	}{
		{"Get", http.MethodGet, nil},
		{"Update", http.MethodPut, map[string]string{"title": "stolen"}},
		{"Delete", http.MethodDelete, nil},
	} {
		t.Run(tc.name+" From Other Tenant", func(t *testing.T) {
			rec := env.do(t, tc.method, "/notes/"+noteID, globex, tc.body)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
		})
	}

	t.Run("Other Tenant List Is Empty", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/notes", globex, nil)
		var body struct {
			Count int `json:"count"`
		}
		decode(t, rec, &body)
		if body.Count != 0 {
			t.Errorf("count = %d, want 0", body.Count)
		}
	})
}

func TestTenantRoutes(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(1000, time.Minute))
	acmeAdmin := env.login(t, "admin@acme.test")
	acmeMember := env.login(t, "user@acme.test")
	globexAdmin := env.login(t, "admin@globex.test")

	t.Run("Member Cannot Upgrade", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/acme/upgrade", acmeMember, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		var body struct {
			Current string `json:"current"`
		}
		decode(t, rec, &body)
		if body.Current != "member" {
			t.Errorf("current = %q, want member", body.Current)
		}
	})

	t.Run("Admin Cannot Touch Foreign Slug", func(t *testing.T) {
		routes := []struct {
			method string
			path   string
		}{
			{http.MethodPost, "/tenants/acme/upgrade"},
			{http.MethodGet, "/tenants/acme/users"},
			{http.MethodPost, "/tenants/acme/invite"},
			{http.MethodGet, "/tenants/acme/info"},
		}
		for _, route := range routes {
			rec := env.do(t, route.method, route.path, globexAdmin, nil)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("%s %s: status = %d, want 403", route.method, route.path, rec.Code)
			}
		}
	})

	t.Run("Upgrade Then Upgrade Again", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/acme/upgrade", acmeAdmin, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Tenant struct {
				Plan         string `json:"plan"`
				PreviousPlan string `json:"previousPlan"`
			} `json:"tenant"`
		}
		decode(t, rec, &body)
		if body.Tenant.Plan != "pro" || body.Tenant.PreviousPlan != "free" {
			t.Errorf("unexpected plans: %+v", body.Tenant)
		}

		again := env.do(t, http.MethodPost, "/tenants/acme/upgrade", acmeAdmin, nil)
		if again.Code != http.StatusBadRequest {
			t.Fatalf("second upgrade: status = %d, want 400", again.Code)
		}
	})

	t.Run("Info For Member Omits User Count", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/tenants/acme/info", acmeMember, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Tenant map[string]any `json:"tenant"`
		}
		decode(t, rec, &body)
		if _, ok := body.Tenant["userCount"]; ok {
			t.Error("member info must not include userCount")
		}
	})

	t.Run("Users Admin Only", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/tenants/acme/users", acmeAdmin, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Count int `json:"count"`
		}
		decode(t, rec, &body)
		if body.Count != 2 {
			t.Errorf("count = %d, want 2", body.Count)
		}

		denied := env.do(t, http.MethodGet, "/tenants/acme/users", acmeMember, nil)
		if denied.Code != http.StatusForbidden {
			t.Fatalf("member: status = %d, want 403", denied.Code)
		}
	})

	t.Run("Invite Not Implemented", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/acme/invite", acmeAdmin, nil)
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status = %d, want 501", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, middleware.NewMemoryRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}
