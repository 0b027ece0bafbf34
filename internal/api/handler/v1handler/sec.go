package v1handler

import (
	"context"
	"net/http"
	"primes/internal/config"
	"primes/pkg/domain"
	"primes/pkg/serrors"
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// CtxKey is the type of context keys set by this package.
type CtxKey string

// UserIDKey is the context key holding the authenticated domain.UserID.
const UserIDKey CtxKey = "UserID"

// SecHandlerOptions configures token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA public key tokens are verified with.
	PublicKey string
}

// NewSecHandlerOptions builds SecHandlerOptions from the application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler authenticates requests carrying RS256 bearer tokens whose subject
// is the user ID.
type SecHandler struct {
	parser *jwt.Parser
	// keyFunc is nil when no public key is configured; every token is rejected then.
	keyFunc jwt.Keyfunc
}

// NewSecHandler parses the configured public key. An empty key yields a handler
// that rejects every request.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	sh := &SecHandler{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
	if opts == nil || opts.PublicKey == "" {
		return sh, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "parse jwt public key")
	}
	sh.keyFunc = func(*jwt.Token) (any, error) { return key, nil }

	return sh, nil
}

// HandleBearerAuth verifies token and stores the user ID in the returned context.
func (s SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	if s.keyFunc == nil {
		return ctx, serrors.With(serrors.ErrUnauthorized, "authentication is not configured")
	}

	var claims jwt.RegisteredClaims
	if _, err := s.parser.ParseWithClaims(token, &claims, s.keyFunc); err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	return context.WithValue(ctx, UserIDKey, userID), nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" header.
func (s SecHandler) Middleware(h *Handler, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		ctx, err := s.HandleBearerAuth(r.Context(), token)
		if err != nil {
			h.writeError(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}

// GetUserIDFromContext returns the authenticated user, or the zero UserID.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	userID, _ := ctx.Value(UserIDKey).(domain.UserID)

	return userID
}
