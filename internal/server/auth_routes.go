package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/brk3/habitledger/internal/logger"
	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

func (s *Server) provider(w http.ResponseWriter, r *http.Request) (string, *AuthProvider, bool) {
	id := chi.URLParam(r, "id")
	p, ok := s.authProviders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return "", nil, false
	}
	return id, p, true
}

// login starts an authorization code flow with PKCE.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	_, p, ok := s.provider(w, r)
	if !ok {
		return
	}

	verifier := make([]byte, 48)
	if _, err := rand.Read(verifier); err != nil {
		writeError(w, http.StatusInternalServerError, "pkce generation failed")
		return
	}
	verifierStr := base64.RawURLEncoding.EncodeToString(verifier)
	sum := sha256.Sum256([]byte(verifierStr))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		writeError(w, http.StatusInternalServerError, "state generation failed")
		return
	}
	st := hex.EncodeToString(stateBytes)

	// Only relative return paths.
	ret := r.URL.Query().Get("return")
	if u, err := url.Parse(ret); ret == "" || err != nil || u.IsAbs() || u.Host != "" {
		ret = "/"
	}

	p.state.Put(st, authState{
		Verifier: verifierStr,
		Return:   ret,
		ExpireAt: time.Now().Add(p.state.ttl),
	})

	authURL := p.oauth2.AuthCodeURL(
		st,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.provider(w, r)
	if !ok {
		return
	}
	st := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if st == "" || code == "" {
		writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}

	saved, ok := p.state.GetAndDelete(st)
	if !ok || saved.Verifier == "" {
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	tok, err := p.oauth2.Exchange(r.Context(), code, oauth2.SetAuthURLParam("code_verifier", saved.Verifier))
	if err != nil {
		logger.Warn("Code exchange failed", "provider", id, "error", err)
		writeError(w, http.StatusBadGateway, "code exchange failed")
		return
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		writeError(w, http.StatusBadGateway, "no id_token in response")
		return
	}
	if _, err := p.idVerifier.Verify(r.Context(), rawIDToken); err != nil {
		RecordAuthEvent("login", "failed", id)
		writeError(w, http.StatusUnauthorized, "id_token invalid")
		return
	}

	val, err := s.sessionCookie.Encode(sessionCookieName, id+":"+rawIDToken)
	if err != nil {
		logger.Error("Failed to encode session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "session encoding failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	RecordAuthEvent("login", "success", id)
	http.Redirect(w, r, saved.Return, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("User logged out")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) simpleLogin(w http.ResponseWriter, _ *http.Request) {
	ids := make([]string, 0, len(s.authProviders))
	for id := range s.authProviders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<h1>Login</h1>`)
	for _, id := range ids {
		fmt.Fprintf(w, `<form action="/auth/login/%s"><button>%s</button></form>`,
			url.PathEscape(id), html.EscapeString(s.authProviders[id].name))
	}
}

// getAPIToken echoes the session's "provider:id_token" so it can be pasted
// into the CLI config as a Bearer token.
func (s *Server) getAPIToken(w http.ResponseWriter, r *http.Request) {
	providerID, rawIDToken := s.sessionToken(r)
	if rawIDToken == "" {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(providerID + ":" + rawIDToken))
}

func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(true, r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, http.StatusInternalServerError, "key generation failed")
		return
	}
	apiKey := apiKeyPrefix + "live_" + hex.EncodeToString(raw)

	if err := s.keys.Put(r.Context(), hashAPIKey(apiKey), userID); err != nil {
		logger.Error("Failed to store API key", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	logger.Info("API key generated", "user_id", userID, "key_hash", truncateHash(hashAPIKey(apiKey)))
	RecordAuthEvent("api_key", "generated", "apikey")
	_ = writeJSON(w, http.StatusOK, map[string]string{"api_key": apiKey})
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(true, r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	keys, err := s.keys.ListForUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list API keys", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string][]APIKeyInfo{"keys": keys})
}
