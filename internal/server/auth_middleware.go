package server

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brk3/habitledger/internal/config"
	"github.com/brk3/habitledger/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 24 * time.Hour
	loginStateTTL     = 5 * time.Minute
	apiKeyPrefix      = "hab_"
)

type userCtxKey struct{}

type User struct {
	Subject string
	Email   string
	UserID  string
	Claims  map[string]any
}

type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	idVerifier *oidc.IDTokenVerifier
	state      *StateStore
}

// StateStore maps the OAuth state parameter of a pending login to its PKCE
// verifier and return path. A state is usable once, and only within ttl;
// stale entries are swept whenever a new login starts.
type StateStore struct {
	ttl time.Duration
	mu  sync.Mutex
	m   map[string]authState
}

type authState struct {
	Verifier string
	Return   string
	ExpireAt time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{ttl: ttl, m: make(map[string]authState)}
}

func (s *StateStore) Put(key string, v authState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(time.Now())
	s.m[key] = v
}

func (s *StateStore) GetAndDelete(key string) (authState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	delete(s.m, key)
	if !ok || time.Now().After(v.ExpireAt) {
		return authState{}, false
	}
	return v, true
}

// sweep expects s.mu held.
func (s *StateStore) sweep(now time.Time) {
	for k, v := range s.m {
		if now.After(v.ExpireAt) {
			delete(s.m, k)
		}
	}
}

func ConfigureOIDCProviders(cfg *config.Config) (map[string]*AuthProvider, *securecookie.SecureCookie, error) {
	logger.Info("Configuring OIDC providers", "count", len(cfg.OIDCProviders))

	hashKey := securecookie.GenerateRandomKey(64)
	blockKey := securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, errors.New("failed to generate secure cookie keys")
	}
	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(int(sessionMaxAge.Seconds()))

	providers := make(map[string]*AuthProvider, len(cfg.OIDCProviders))
	for _, pc := range cfg.OIDCProviders {
		logger.Debug("Setting up OIDC provider", "id", pc.Id, "issuer", pc.IssuerURL)
		prov, err := oidc.NewProvider(context.Background(), pc.IssuerURL)
		if err != nil {
			return nil, nil, fmt.Errorf("oidc provider %s: %w", pc.Id, err)
		}
		scopes := pc.Scopes
		if len(scopes) == 0 {
			scopes = []string{oidc.ScopeOpenID, "email"}
		}
		providers[pc.Id] = &AuthProvider{
			name: pc.Name,
			oauth2: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				Endpoint:     prov.Endpoint(),
				RedirectURL:  pc.RedirectURL,
				Scopes:       scopes,
			},
			idVerifier: prov.Verifier(&oidc.Config{ClientID: pc.ClientID}),
			state:      NewStateStore(loginStateTTL),
		}
		logger.Info("OIDC provider configured", "id", pc.Id, "name", pc.Name)
	}
	return providers, cookie, nil
}

// authMiddleware accepts, in order: a session cookie holding
// "provider:id_token", a Bearer API key, or a Bearer "provider:id_token".
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerID, rawIDToken := s.sessionToken(r)

		if rawIDToken == "" {
			if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
				token := strings.TrimPrefix(ah, "Bearer ")
				if strings.HasPrefix(token, apiKeyPrefix) {
					user, ok := s.authenticateAPIKey(r.Context(), token)
					if !ok {
						RecordAuthEvent("verification", "failed", "apikey")
						s.handleAuthFailure(w, r, false)
						return
					}
					RecordAuthEvent("verification", "success", "apikey")
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
					return
				}
				if pID, tok, err := parseProviderToken(token); err == nil {
					if _, known := s.authProviders[pID]; known {
						providerID, rawIDToken = pID, tok
					} else {
						logger.Debug("Unknown provider in Bearer token", "provider", pID)
					}
				}
			}
		}

		if rawIDToken == "" {
			RecordAuthEvent("verification", "missing_token", "unknown")
			s.handleAuthFailure(w, r, false)
			return
		}

		idTok, err := s.authProviders[providerID].idVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			logger.Debug("ID token verification failed", "provider", providerID, "error", err)
			RecordAuthEvent("verification", "failed", providerID)
			s.handleAuthFailure(w, r, true)
			return
		}
		RecordAuthEvent("verification", "success", providerID)

		var claims map[string]any
		if err := idTok.Claims(&claims); err != nil {
			logger.Error("Failed to extract claims from token", "error", err)
			s.handleAuthFailure(w, r, true)
			return
		}
		u := &User{
			Subject: idTok.Subject,
			Email:   strClaim(claims, "email"),
			UserID:  userIDFromClaims(claims),
			Claims:  claims,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
	})
}

func (s *Server) sessionToken(r *http.Request) (providerID, rawIDToken string) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", ""
	}
	var prefixed string
	if err := s.sessionCookie.Decode(sessionCookieName, c.Value, &prefixed); err != nil {
		logger.Debug("Failed to decode session cookie", "error", err)
		return "", ""
	}
	providerID, rawIDToken, err = parseProviderToken(prefixed)
	if err != nil {
		logger.Debug("Failed to parse session token", "error", err)
		return "", ""
	}
	if _, known := s.authProviders[providerID]; !known {
		return "", ""
	}
	return providerID, rawIDToken
}

// parseProviderToken splits "provider:jwt".
func parseProviderToken(token string) (providerID, jwt string, err error) {
	providerID, jwt, found := strings.Cut(token, ":")
	if !found {
		return "", "", errors.New("invalid token format: expected 'provider:jwt'")
	}
	if providerID == "" {
		return "", "", errors.New("empty provider ID")
	}
	if jwt == "" {
		return "", "", errors.New("empty JWT token")
	}
	return providerID, jwt, nil
}

func strClaim(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

// userIDFromClaims derives a stable id from issuer and subject.
func userIDFromClaims(claims map[string]any) string {
	iss, ok := claims["iss"].(string)
	if !ok {
		return ""
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return ""
	}
	hash := sha256.Sum256([]byte(iss + "|" + sub))
	return fmt.Sprintf("user-%x", hash[:8])
}

func userIDFromContext(authEnabled bool, r *http.Request) string {
	if !authEnabled {
		return "anonymous"
	}
	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok {
		return ""
	}
	return user.UserID
}

// handleAuthFailure redirects browsers to the login page and answers 401
// to everything else.
func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	}

	accept := r.Header.Get("Accept")
	if r.Method == http.MethodGet && (strings.Contains(accept, "text/html") || accept == "") {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}
	if clearCookie {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	} else {
		w.Header().Set("WWW-Authenticate", `Bearer realm="habitledger"`)
	}
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func (s *Server) authenticateAPIKey(ctx context.Context, apiKey string) (*User, bool) {
	keyHash := hashAPIKey(apiKey)
	userID, found, err := s.keys.Lookup(ctx, keyHash)
	if err != nil {
		logger.Error("Failed to look up API key", "error", err)
		return nil, false
	}
	if !found {
		logger.Debug("API key not found", "key_hash", truncateHash(keyHash))
		return nil, false
	}
	return &User{
		UserID:  userID,
		Subject: "apikey:" + truncateHash(keyHash),
		Claims:  map[string]any{"auth_method": "api_key"},
	}, true
}
