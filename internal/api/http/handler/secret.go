package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
	"github.com/ivolkov/secrethold/internal/service"
)

// SecretService defines protected-payload operations.
type SecretService interface {
	Submit(ctx context.Context, identity *model.SessionIdentity, value string) (model.Account, error)
	ListShared(ctx context.Context) ([]model.SharedSecret, error)
}

// Secret handles the secrets listing and submission endpoints.
type Secret struct {
	secretService  SecretService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewSecret creates a new Secret handler.
func NewSecret(secretService SecretService, contextManager model.ContextManager, logger *logger.Logger) *Secret {
	return &Secret{
		secretService:  secretService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Home serves the landing page.
func (h *Secret) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body><h1>secrethold</h1>`+
		`<p><a href="/secrets">secrets</a> | <a href="/submit">submit</a> | `+
		`<a href="/auth/google">login with google</a> | <a href="/logout">logout</a></p>`+
		`</body></html>`)
}

// List serves every shared secret. The listing is unauthenticated on
// purpose: see service.Secret.ListShared.
func (h *Secret) List(w http.ResponseWriter, r *http.Request) {
	shared, err := h.secretService.ListShared(r.Context())
	if err != nil {
		h.logger.Error("Secret handler: failed to list shared secrets",
			"error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(shared); err != nil {
		h.logger.Error("Secret handler: failed to encode shared secrets",
			"error", err.Error())
	}
}

// SubmitPage gates the submission page; anonymous visitors are sent to login.
func (h *Secret) SubmitPage(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentity(r.Context())
	if !ok || service.Check(&identity) != service.Authenticated {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body><form method="post" action="/submit">`+
		`<input name="secret"><button type="submit">share</button>`+
		`</form></body></html>`)
}

// Submit overwrites the caller's secret with the submitted form value.
func (h *Secret) Submit(w http.ResponseWriter, r *http.Request) {
	var identity *model.SessionIdentity
	if resolved, ok := h.contextManager.GetIdentity(r.Context()); ok {
		identity = &resolved
	}

	_, err := h.secretService.Submit(r.Context(), identity, r.PostFormValue("secret"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusFound)
}
