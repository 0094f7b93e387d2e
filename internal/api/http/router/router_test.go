package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpctx "github.com/ivolkov/secrethold/internal/api/http/context"
	"github.com/ivolkov/secrethold/internal/api/http/middleware"
	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
	"github.com/ivolkov/secrethold/internal/password"
	"github.com/ivolkov/secrethold/internal/service"
	"github.com/ivolkov/secrethold/internal/token"
)

type accountStoreFake struct {
	mu       sync.Mutex
	accounts []model.Account
}

func (f *accountStoreFake) Create(_ context.Context, account model.Account) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if account.Username != "" && existing.Username == account.Username {
			return model.Account{}, model.ErrConflict
		}
		if account.Provider != "" && existing.Provider == account.Provider &&
			existing.ProviderUserID == account.ProviderUserID {
			return model.Account{}, model.ErrConflict
		}
	}
	f.accounts = append(f.accounts, account)
	return account, nil
}

func (f *accountStoreFake) GetByID(_ context.Context, id uuid.UUID) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, model.ErrNotFound
}

func (f *accountStoreFake) GetByUsername(_ context.Context, username string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username != "" && a.Username == username {
			return a, nil
		}
	}
	return model.Account{}, model.ErrNotFound
}

func (f *accountStoreFake) GetByFederatedSubject(_ context.Context, provider, providerUserID string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Provider == provider && a.ProviderUserID == providerUserID && a.Provider != "" {
			return a, nil
		}
	}
	return model.Account{}, model.ErrNotFound
}

func (f *accountStoreFake) SetSecret(_ context.Context, id uuid.UUID, value string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.accounts {
		if a.ID == id {
			f.accounts[i].Secret = &value
			return f.accounts[i], nil
		}
	}
	return model.Account{}, model.ErrNotFound
}

func (f *accountStoreFake) ListWithSecret(_ context.Context) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []model.Account
	for _, a := range f.accounts {
		if a.Secret != nil {
			list = append(list, a)
		}
	}
	return list, nil
}

type sessionStoreFake struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.Session
}

func newSessionStoreFake() *sessionStoreFake {
	return &sessionStoreFake{sessions: map[uuid.UUID]model.Session{}}
}

func (f *sessionStoreFake) Create(_ context.Context, session model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *sessionStoreFake) GetByID(_ context.Context, id uuid.UUID) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

func (f *sessionStoreFake) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if ok && session.RevokedAt == nil {
		session.RevokedAt = &at
		f.sessions[id] = session
	}
	return nil
}

func (f *sessionStoreFake) RevokeAllByAccount(_ context.Context, accountID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, session := range f.sessions {
		if session.AccountID == accountID && session.RevokedAt == nil {
			session.RevokedAt = &at
			f.sessions[id] = session
		}
	}
	return nil
}

type oauthClientStub struct {
	identity model.FederatedIdentity
}

func (s *oauthClientStub) Begin(context.Context, string) (string, error) {
	return "https://provider/auth?state=stub-state", nil
}

func (s *oauthClientStub) Complete(_ context.Context, _, state, _ string) (model.FederatedIdentity, error) {
	if state != "stub-state" {
		return model.FederatedIdentity{}, model.ErrInvalidState
	}
	return s.identity, nil
}

func newTestHandler(t *testing.T, oauth *oauthClientStub) http.Handler {
	t.Helper()
	log := logger.New(0)
	accounts := &accountStoreFake{}
	sessions := newSessionStoreFake()

	hasher := password.NewHasher(bcrypt.MinCost)
	manager := token.NewJWT("test-secret")

	authService := service.NewAuth(accounts, hasher, log)
	sessionService := service.NewSession(manager, sessions, time.Hour, log)
	secretService := service.NewSecret(accounts, log)

	r := New(authService, sessionService, secretService, oauth, httpctx.NewManager(), false, log)
	return r.Register()
}

func doForm(h http.Handler, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doGet(h http.Handler, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func extractSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func decodeSecrets(t *testing.T, rec *httptest.ResponseRecorder) []model.SharedSecret {
	t.Helper()
	var shared []model.SharedSecret
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&shared))
	return shared
}

func TestRouter_LocalAccountFlow(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	// register logs the account in
	rec := doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"s3cret"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/secrets", rec.Header().Get("Location"))
	cookie := extractSessionCookie(t, rec)

	// submit a secret with the fresh session
	rec = doForm(h, "/submit", url.Values{"secret": {"my treasure"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/secrets", rec.Header().Get("Location"))

	// the listing shows it without any session
	rec = doGet(h, "/secrets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.SharedSecret{{Owner: "alice", Secret: "my treasure"}}, decodeSecrets(t, rec))

	// overwrite replaces the previous value
	rec = doForm(h, "/submit", url.Values{"secret": {"new treasure"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = doGet(h, "/secrets", nil)
	assert.Equal(t, []model.SharedSecret{{Owner: "alice", Secret: "new treasure"}}, decodeSecrets(t, rec))
}

func TestRouter_RegisterConflict(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"first"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/secrets", rec.Header().Get("Location"))

	rec = doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"second"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	// the original password still works
	rec = doForm(h, "/login", url.Values{"username": {"alice"}, "password": {"first"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/secrets", rec.Header().Get("Location"))
}

func TestRouter_LoginRejectsBadCredentials(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"s3cret"}}, nil)

	rec := doForm(h, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = doForm(h, "/login", url.Values{"username": {"ghost"}, "password": {"s3cret"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_LogoutInvalidatesReplayedToken(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"s3cret"}}, nil)
	cookie := extractSessionCookie(t, rec)

	rec = doForm(h, "/submit", url.Values{"secret": {"hello"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = doGet(h, "/logout", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	// replaying the captured cookie after logout is anonymous again
	rec = doForm(h, "/submit", url.Values{"secret": {"world"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// and the stored secret is untouched
	rec = doGet(h, "/secrets", nil)
	assert.Equal(t, []model.SharedSecret{{Owner: "alice", Secret: "hello"}}, decodeSecrets(t, rec))
}

func TestRouter_LogoutIsIdempotent(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"s3cret"}}, nil)
	cookie := extractSessionCookie(t, rec)

	for i := 0; i < 2; i++ {
		rec = doGet(h, "/logout", cookie)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	}

	// logout without any session also lands home
	rec = doGet(h, "/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_SubmitRequiresSession(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doGet(h, "/submit", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = doForm(h, "/submit", url.Values{"secret": {"value"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = doForm(h, "/submit", url.Values{"secret": {"value"}}, &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: "forged-token",
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_FederatedFlow(t *testing.T) {
	stub := &oauthClientStub{identity: model.FederatedIdentity{
		Provider:       "google",
		ProviderUserID: "sub-1",
		Hints:          model.ProfileHints{DisplayName: "Alice", AvatarURL: "https://pic"},
	}}
	h := newTestHandler(t, stub)

	rec := doGet(h, "/auth/google", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://provider/auth?state=stub-state", rec.Header().Get("Location"))

	rec = doGet(h, "/auth/google/callback?state=stub-state&code=code-1", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/secrets", rec.Header().Get("Location"))
	cookie := extractSessionCookie(t, rec)

	rec = doForm(h, "/submit", url.Values{"secret": {"federated treasure"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = doGet(h, "/secrets", nil)
	assert.Equal(t, []model.SharedSecret{{Owner: "Alice", Secret: "federated treasure"}}, decodeSecrets(t, rec))

	// a second login resolves to the same account
	rec = doGet(h, "/auth/google/callback?state=stub-state&code=code-2", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/secrets", rec.Header().Get("Location"))

	rec = doGet(h, "/secrets", nil)
	require.Len(t, decodeSecrets(t, rec), 1)
}

func TestRouter_FederatedCallbackForgedState(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doGet(h, "/auth/google/callback?state=forged&code=code-1", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_HomeAndForms(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doGet(h, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(h, "/register", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/register"`)

	rec = doGet(h, "/login", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
}

func TestRouter_BearerHeaderSession(t *testing.T) {
	h := newTestHandler(t, &oauthClientStub{})

	rec := doForm(h, "/register", url.Values{"username": {"alice"}, "password": {"s3cret"}}, nil)
	cookie := extractSessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(url.Values{"secret": {"via header"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/secrets", rec.Header().Get("Location"))
}
