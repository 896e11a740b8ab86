package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/store"
)

// Resolver turns a request into the auth slice the shell reads.
type Resolver struct {
	profiles  store.ProfileStore
	cookie    string
	logger    *zap.Logger
	threshold time.Time
}

type ResolverOption func(*Resolver)

// WithProfileCreationThreshold marks profiles created after t as new.
func WithProfileCreationThreshold(t time.Time) ResolverOption {
	return func(a *Resolver) { a.threshold = t }
}

// NewResolver creates a Resolver reading the token from cookie (or the
// Authorization header) and the profile from profiles.
func NewResolver(profiles store.ProfileStore, cookie string, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Resolver{profiles: profiles, cookie: cookie, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreatedAfter reports whether p was created strictly after threshold. A
// missing profile, creation date or threshold is never after.
func CreatedAfter(p *models.Profile, threshold time.Time) bool {
	if p == nil || p.CreatedAt.IsZero() || threshold.IsZero() {
		return false
	}
	return p.CreatedAt.After(threshold)
}

// Resolve never fails. A request without a token is initialized and logged
// out; a token with no stored profile keeps the token but no profile; a
// store failure leaves auth uninitialized so no auth chrome is shown.
func (a *Resolver) Resolve(r *http.Request) models.Auth {
	token := a.Token(r)
	if token == "" {
		return models.Auth{IsInitialized: true}
	}
	return a.ResolveToken(r.Context(), token)
}

func (a *Resolver) ResolveToken(ctx context.Context, token string) models.Auth {
	if a.profiles == nil {
		return models.Auth{IsInitialized: true, TokenV3: token}
	}
	p, err := a.profiles.Lookup(ctx, token)
	switch {
	case err == nil:
		return models.Auth{
			IsInitialized: true,
			TokenV3:       token,
			Profile:       p,
			NewProfile:    CreatedAfter(p, a.threshold),
		}
	case errors.Is(err, store.ErrProfileNotFound):
		return models.Auth{IsInitialized: true, TokenV3: token}
	default:
		a.logger.Warn("profile lookup failed", zap.Error(err))
		return models.Auth{}
	}
}

// Token returns the session token from the configured cookie, falling back
// to a bearer token.
func (a *Resolver) Token(r *http.Request) string {
	if a.cookie != "" {
		if c, err := r.Cookie(a.cookie); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ExtractTokenFromHeader(r)
}

// ExtractTokenFromHeader extracts the token from the Authorization header.
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
