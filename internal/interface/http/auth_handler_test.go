package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/argentumhq/argentum/internal/application"
	"github.com/argentumhq/argentum/internal/infrastructure/memory"
	"github.com/argentumhq/argentum/internal/interface/middleware"
	"github.com/argentumhq/argentum/pkg/helpers"
	"github.com/argentumhq/argentum/pkg/validation"
)

var setupOnce sync.Once

// fakeRecorder captures audit events synchronously for assertions.
type fakeRecorder struct {
	mu     sync.Mutex
	events []application.AuditEvent
}

func (f *fakeRecorder) Record(_ context.Context, ev application.AuditEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeRecorder) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

type testEnv struct {
	router *gin.Engine
	svc    *application.Service
	audit  *fakeRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := helpers.NewJWTManager("test-secret", 30*time.Minute)
	svc := application.NewService(
		memory.NewUserRepository(),
		helpers.NewBcryptHasher(bcrypt.MinCost),
		tokens,
		nil,
		logger,
	)

	audit := &fakeRecorder{}
	h := NewAuthHandler(svc, audit, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	protected := api.Group("/")
	protected.Use(middleware.BearerAuth(tokens))
	protected.GET("/auth/me", h.Me)

	return &testEnv{router: r, svc: svc, audit: audit}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerUser(t *testing.T, email, password, username string) map[string]any {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"username":%q}`, email, password, username)
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body)
	}
	return decodeBody(t, w)
}

func (e *testEnv) loginUser(t *testing.T, email, password string) map[string]any {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body)
	}
	return decodeBody(t, w)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body, err)
	}
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	got := env.registerUser(t, "Alice@Example.com", "password123", "alice")
	if got["id"] == "" || got["id"] == nil {
		t.Fatal("missing id in response")
	}
	if got["email"] != "alice@example.com" {
		t.Fatalf("email = %v, want normalized form", got["email"])
	}
	if got["is_active"] != true || got["is_verified"] != false {
		t.Fatalf("flags = active:%v verified:%v", got["is_active"], got["is_verified"])
	}
	if _, ok := got["hashed_password"]; ok {
		t.Fatal("response leaked the password hash")
	}

	actions := env.audit.actions()
	if len(actions) != 1 || actions[0] != application.AuditRegisterSuccess {
		t.Fatalf("audit actions = %v", actions)
	}
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "password123", "alice")

	w := env.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"alice@example.com","password":"password456","username":"alice2"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register = %d: %s", w.Code, w.Body)
	}
	body := decodeBody(t, w)
	detail, _ := body["detail"].(string)
	if !strings.Contains(detail, "already exists") {
		t.Fatalf("detail = %q", detail)
	}
}

func TestRegisterValidationEndpoint(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing email", `{"password":"password123","username":"alice"}`, "email"},
		{"bad email", `{"email":"nope","password":"password123","username":"alice"}`, "email"},
		{"short password", `{"email":"a@example.com","password":"short","username":"alice"}`, "password"},
		{"short username", `{"email":"a@example.com","password":"password123","username":"ab"}`, "username"},
		{"invalid json", `{"email":`, "payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/register", tc.body, nil)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d: %s", w.Code, w.Body)
			}
			body := decodeBody(t, w)
			fields, _ := body["fields"].(map[string]any)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("fields = %v, want key %q", fields, tc.field)
			}
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "password123", "alice")

	got := env.loginUser(t, "alice@example.com", "password123")
	if got["token_type"] != "bearer" {
		t.Fatalf("token_type = %v", got["token_type"])
	}
	token, _ := got["access_token"].(string)
	if token == "" {
		t.Fatal("missing access_token")
	}
	if got["expires_at"] == nil {
		t.Fatal("missing expires_at")
	}
}

func TestLoginFailureBodiesAreIdentical(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "password123", "alice")

	unknown := env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ghost@example.com","password":"password123"}`, nil)
	wrong := env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"wrongpassword"}`, nil)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d, want 401, 401", unknown.Code, wrong.Code)
	}
	if !bytes.Equal(unknown.Body.Bytes(), wrong.Body.Bytes()) {
		t.Fatalf("401 bodies differ: %s vs %s", unknown.Body, wrong.Body)
	}
	if h := unknown.Header().Get("WWW-Authenticate"); h != "Bearer" {
		t.Fatalf("WWW-Authenticate = %q", h)
	}
}

func TestLoginInactiveEndpoint(t *testing.T) {
	env := newTestEnv(t)
	got := env.registerUser(t, "alice@example.com", "password123", "alice")

	id, _ := got["id"].(string)
	stored, err := env.svc.Repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	stored.Deactivate()
	if err := env.svc.Repo.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	w := env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"password123"}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("inactive login = %d: %s", w.Code, w.Body)
	}
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "password123", "alice")
	login := env.loginUser(t, "alice@example.com", "password123")
	token, _ := login["access_token"].(string)

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d: %s", w.Code, w.Body)
	}
	got := decodeBody(t, w)
	if got["email"] != "alice@example.com" || got["username"] != "alice" {
		t.Fatalf("me body = %v", got)
	}
}

func TestMeUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		headers map[string]string
	}{
		{"no header", nil},
		{"wrong scheme", map[string]string{"Authorization": "Basic abc"}},
		{"garbage token", map[string]string{"Authorization": "Bearer not-a-token"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", tc.headers)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("me = %d: %s", w.Code, w.Body)
			}
		})
	}
}

func TestMeExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com", "password123", "alice")

	expired := helpers.NewJWTManager("test-secret", -time.Minute)
	token, _, err := expired.Issue("some-id", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me with expired token = %d: %s", w.Code, w.Body)
	}
}

func TestMeDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	got := env.registerUser(t, "alice@example.com", "password123", "alice")
	login := env.loginUser(t, "alice@example.com", "password123")
	token, _ := login["access_token"].(string)

	id, _ := got["id"].(string)
	if err := env.svc.Repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("me for deleted user = %d: %s", w.Code, w.Body)
	}
}

func TestRegisterLoginMeFlow(t *testing.T) {
	env := newTestEnv(t)

	reg := env.registerUser(t, "bob@example.com", "hunter2hunter2", "bob")
	login := env.loginUser(t, "bob@example.com", "hunter2hunter2")
	token, _ := login["access_token"].(string)

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d: %s", w.Code, w.Body)
	}
	me := decodeBody(t, w)
	if me["id"] != reg["id"] {
		t.Fatalf("me id = %v, register id = %v", me["id"], reg["id"])
	}

	want := []string{
		application.AuditRegisterSuccess,
		application.AuditLoginSuccess,
		application.AuditMeSuccess,
	}
	got := env.audit.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit action %d = %q, want %q", i, got[i], want[i])
		}
	}
}
