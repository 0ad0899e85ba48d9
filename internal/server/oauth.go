package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/tracksync/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// OAuthHandler serves the authorization-code flow: /login redirects to the consent page and
// /callback exchanges the returned code for tokens.
type OAuthHandler struct {
	config      *oauth2.Config
	state       string
	client      *http.Client
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler with the given OAuth2 config and state token.
//
// The state token should be cryptographically random (see [shared.GenerateState]).
// A nil client falls back to [http.DefaultClient] for the code exchange.
func NewOAuthHandler(config *oauth2.Config, state string, client *http.Client) *OAuthHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &OAuthHandler{
		config:     config,
		state:      state,
		client:     client,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/login", "/callback"}
}

// LoginURL returns the consent page URL /login redirects to.
func (h *OAuthHandler) LoginURL() string {
	return h.config.AuthCodeURL(h.state)
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/login":
		http.Redirect(w, r, h.LoginURL(), http.StatusFound)
	case "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// callback validates the state parameter, exchanges the authorization code for tokens,
// and sends the result through the result channel. Only the first callback is processed.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{Err: shared.ErrStateMismatch})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{Err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, h.client)
	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.Send(OAuthResult{Err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Authorization successful. You can close this window and return to the terminal.")
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
