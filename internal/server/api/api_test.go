package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/dbx"
	"github.com/dkravets/adminboard/internal/logging"
	"github.com/dkravets/adminboard/internal/server/auth"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/directory"
	"github.com/dkravets/adminboard/internal/server/models"
	adminsrepo "github.com/dkravets/adminboard/internal/server/repositories/admins"
	"github.com/dkravets/adminboard/internal/server/services"
)

// --- in-memory stand-ins for the storage and outbound integrations ---

type memAdminsRepo struct {
	admins map[string]*models.Admin
}

func (m *memAdminsRepo) Create(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	if _, ok := m.admins[a.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	a.ID = "id-" + a.Email
	a.CreatedAt = time.Now().UTC()
	m.admins[a.Email] = a
	return a, nil
}

func (m *memAdminsRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	a, ok := m.admins[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *memAdminsRepo) List(ctx context.Context) ([]*models.Admin, error) {
	emails := make([]string, 0, len(m.admins))
	for e := range m.admins {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	out := make([]*models.Admin, 0, len(emails))
	for _, e := range emails {
		a := *m.admins[e]
		out = append(out, &a)
	}
	return out, nil
}

func (m *memAdminsRepo) DeleteByEmail(ctx context.Context, email string) error {
	if _, ok := m.admins[email]; !ok {
		return common.ErrNotFound
	}
	delete(m.admins, email)
	return nil
}

func (m *memAdminsRepo) BindSessionToken(ctx context.Context, email, token string) error {
	a, ok := m.admins[email]
	if !ok {
		return common.ErrNotFound
	}
	a.SessionToken = sql.NullString{String: token, Valid: true}
	return nil
}

func (m *memAdminsRepo) ClearSessionToken(ctx context.Context, email string) error {
	a, ok := m.admins[email]
	if !ok {
		return common.ErrNotFound
	}
	a.SessionToken = sql.NullString{}
	return nil
}

func (m *memAdminsRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	a, ok := m.admins[email]
	if !ok {
		return common.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

type memRepoManager struct {
	repo *memAdminsRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Admins(db dbx.DBTX) adminsrepo.Repository    { return m.repo }

type memMailer struct {
	to, subject, html string
	sends             int
}

func (m *memMailer) Send(ctx context.Context, to, subject, html string) error {
	m.sends++
	m.to, m.subject, m.html = to, subject, html
	return nil
}

type memIdentity struct {
	uids     map[string]string
	disabled map[string]bool
	nextUID  int
}

func (m *memIdentity) CreateUser(ctx context.Context, email string) (string, error) {
	m.nextUID++
	uid := "uid-" + string(rune('a'+m.nextUID-1))
	m.uids[email] = uid
	return uid, nil
}

func (m *memIdentity) LookupUID(ctx context.Context, email string) (string, error) {
	uid, ok := m.uids[email]
	if !ok {
		return "", common.ErrNotFound
	}
	return uid, nil
}

func (m *memIdentity) UpdateEmail(ctx context.Context, uid, email string) error { return nil }

func (m *memIdentity) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	m.disabled[uid] = disabled
	return nil
}

func (m *memIdentity) DeleteUser(ctx context.Context, uid string) error { return nil }

func (m *memIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if _, ok := m.uids[email]; !ok {
		return "", common.ErrNotFound
	}
	return "https://id.example/reset?oob=abc", nil
}

type memDocStore struct {
	docs map[string]directory.User
}

func (m *memDocStore) Put(ctx context.Context, user directory.User) error {
	m.docs[user.UID] = user
	return nil
}

func (m *memDocStore) Get(ctx context.Context, uid string) (*directory.User, error) {
	u, ok := m.docs[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (m *memDocStore) Delete(ctx context.Context, uid string) error {
	delete(m.docs, uid)
	return nil
}

func (m *memDocStore) List(ctx context.Context, limit int, lastUID, status string) (*directory.Page, error) {
	uids := make([]string, 0, len(m.docs))
	for uid := range m.docs {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	page := &directory.Page{Users: []directory.User{}}
	for _, uid := range uids {
		if uid <= lastUID {
			continue
		}
		u := m.docs[uid]
		if status != "" && status != "all" && u.Status != status {
			continue
		}
		page.Users = append(page.Users, u)
		if len(page.Users) == limit {
			page.LastUID = uid
			break
		}
	}
	return page, nil
}

// --- test harness ---

type testEnv struct {
	router http.Handler
	mock   sqlmock.Sqlmock
	repo   *memAdminsRepo
	mailer *memMailer
	docs   *memDocStore
}

// newTestEnv wires the real services and router over in-memory fakes.
// Two admins are seeded: admin@x.com (admin) and root@x.com (superadmin),
// both with password "secret".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// transaction traffic volume varies per test
	mock.MatchExpectationsInOrder(false)

	hash, err := auth.HashPassword("secret", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	repo := &memAdminsRepo{admins: map[string]*models.Admin{
		"admin@x.com": {ID: "id-1", Email: "admin@x.com", PasswordHash: hash, Role: models.RoleAdmin, CreatedAt: time.Now().UTC()},
		"root@x.com":  {ID: "id-2", Email: "root@x.com", PasswordHash: hash, Role: models.RoleSuperAdmin, CreatedAt: time.Now().UTC()},
	}}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = 4
	cfg.FrontendURL = "http://dash.local"

	rm := &memRepoManager{repo: repo}
	ml := &memMailer{}
	identity := &memIdentity{uids: map[string]string{}, disabled: map[string]bool{}}
	docs := &memDocStore{docs: map[string]directory.User{}}
	logger := logging.NewJSON()

	authService := services.NewAuthService(db, rm, ml, cfg)
	adminService := services.NewAdminService(db, rm, authService, ml, logger, cfg)
	userService := services.NewUserService(identity, docs, ml, logger)

	return &testEnv{
		router: New(authService, adminService, userService, logger, cfg).Router(),
		mock:   mock,
		repo:   repo,
		mailer: ml,
		docs:   docs,
	}
}

// expectTx queues n transaction begin/commit pairs on the mock database.
func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	e.expectTx(1)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	return resp.AccessToken
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body.Detail
}

// resetTokenFromMail pulls the token query parameter out of the reset link
// in the last captured email.
func resetTokenFromMail(t *testing.T, html string) string {
	t.Helper()
	_, rest, found := strings.Cut(html, "token=")
	if !found {
		t.Fatalf("no reset token in mail body: %q", html)
	}
	if i := strings.IndexByte(rest, '"'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
