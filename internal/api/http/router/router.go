package router

import (
	"net/http"

	"github.com/ivolkov/secrethold/internal/api/http/handler"
	"github.com/ivolkov/secrethold/internal/api/http/middleware"
	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	authService    handler.AuthService
	sessionService SessionService
	secretService  handler.SecretService
	oauthClient    handler.OAuthClient
	contextManager model.ContextManager
	cookieSecure   bool
	logger         *logger.Logger
}

// SessionService combines the resolver needed by middleware with the
// issue/revoke operations needed by handlers.
type SessionService interface {
	middleware.SessionResolver
	handler.SessionService
}

// New creates a new Router instance.
func New(
	authService handler.AuthService,
	sessionService SessionService,
	secretService handler.SecretService,
	oauthClient handler.OAuthClient,
	contextManager model.ContextManager,
	cookieSecure bool,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		sessionService: sessionService,
		secretService:  secretService,
		oauthClient:    oauthClient,
		contextManager: contextManager,
		cookieSecure:   cookieSecure,
		logger:         logger,
	}
}

// Register builds the route table and wraps it with logging and session
// resolution middleware.
func (r *Router) Register() http.Handler {
	authHandler := handler.NewAuth(r.authService, r.sessionService, r.oauthClient, r.cookieSecure, r.logger)
	secretHandler := handler.NewSecret(r.secretService, r.contextManager, r.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", secretHandler.Home)
	mux.HandleFunc("GET /register", registerPage)
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("GET /login", loginPage)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /auth/{provider}", authHandler.OAuthStart)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /secrets", secretHandler.List)
	mux.HandleFunc("GET /submit", secretHandler.SubmitPage)
	mux.HandleFunc("POST /submit", secretHandler.Submit)
	mux.HandleFunc("GET /logout", authHandler.Logout)

	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.sessionService, r.contextManager, r.logger)

	return logging.Handle(authenticate.Handle(mux))
}

func registerPage(w http.ResponseWriter, _ *http.Request) {
	writeCredentialsForm(w, "/register")
}

func loginPage(w http.ResponseWriter, _ *http.Request) {
	writeCredentialsForm(w, "/login")
}

func writeCredentialsForm(w http.ResponseWriter, action string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<html><body><form method="post" action="` + action + `">` +
		`<input name="username"><input name="password" type="password">` +
		`<button type="submit">go</button></form></body></html>`))
}
