package handler

import (
	"context"
	"net/http"

	"github.com/ivolkov/secrethold/internal/api/http/middleware"
	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// AuthService defines account registration and authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, password string) (model.Account, error)
	Authenticate(ctx context.Context, credentials model.Credentials) (model.Account, error)
}

// SessionService issues and revokes session tokens.
type SessionService interface {
	Issue(ctx context.Context, account model.Account) (string, error)
	Revoke(ctx context.Context, token string) error
}

// OAuthClient drives the federated provider round-trip.
type OAuthClient interface {
	Begin(ctx context.Context, provider string) (string, error)
	Complete(ctx context.Context, provider, state, code string) (model.FederatedIdentity, error)
}

// Auth handles HTTP endpoints for registration, login and logout. Failures
// redirect back to the entry point of the action, never leak details.
type Auth struct {
	authService    AuthService
	sessionService SessionService
	oauthClient    OAuthClient
	cookieSecure   bool
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, sessionService SessionService, oauthClient OAuthClient, cookieSecure bool, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		sessionService: sessionService,
		oauthClient:    oauthClient,
		cookieSecure:   cookieSecure,
		logger:         logger,
	}
}

// Register creates a local account from the submitted form and logs it in.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	account, err := h.authService.Register(r.Context(), username, password)
	if err != nil {
		h.logger.Info("Auth handler: registration failed",
			"username", username,
			"error", err.Error())
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	h.startSession(w, r, account, "/register")
}

// Login authenticates local credentials from the submitted form.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	credentials := model.LocalCredentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	account, err := h.authService.Authenticate(r.Context(), credentials)
	if err != nil {
		// Generic redirect for every failure: the boundary never reveals
		// whether the username or the password was wrong.
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.startSession(w, r, account, "/login")
}

// OAuthStart redirects the browser to the provider authorization endpoint.
func (h *Auth) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	authURL, err := h.oauthClient.Begin(r.Context(), provider)
	if err != nil {
		h.logger.Error("Auth handler: failed to start oauth flow",
			"provider", provider,
			"error", err.Error())
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes the provider round-trip and resolves the account.
func (h *Auth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("Auth handler: provider returned error",
			"provider", provider,
			"provider_error", errParam)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	identity, err := h.oauthClient.Complete(r.Context(),
		provider, r.URL.Query().Get("state"), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Info("Auth handler: oauth callback failed",
			"provider", provider,
			"error", err.Error())
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	account, err := h.authService.Authenticate(r.Context(), identity)
	if err != nil {
		h.logger.Error("Auth handler: federated account resolution failed",
			"provider", provider,
			"error", err.Error())
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.startSession(w, r, account, "/login")
}

// Logout revokes the current session and clears the cookie. Logging out with
// a stale or missing token still lands on the home page.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ReadSessionToken(r)

	if err := h.sessionService.Revoke(r.Context(), token); err != nil {
		h.logger.Info("Auth handler: logout with unusable token",
			"error", err.Error())
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Auth) startSession(w http.ResponseWriter, r *http.Request, account model.Account, failureTarget string) {
	token, err := h.sessionService.Issue(r.Context(), account)
	if err != nil {
		h.logger.Error("Auth handler: failed to issue session",
			"account_id", account.ID,
			"error", err.Error())
		http.Redirect(w, r, failureTarget, http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/secrets", http.StatusFound)
}
