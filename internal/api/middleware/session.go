package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionContextKey = contextKey("session")

const tokenIssuer = "art-storefront"

type SessionMiddleware struct {
	jwtKey []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionMiddleware(jwtKey []byte, ttl time.Duration) *SessionMiddleware {
	return &SessionMiddleware{jwtKey: jwtKey, ttl: ttl, now: time.Now}
}

// IssueToken signs a new session token. The session id doubles as the cart
// owner.
func (m *SessionMiddleware) IssueToken(sessionID uuid.UUID) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := &models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (m *SessionMiddleware) Require(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format : "Bearer <token>"
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.SessionClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			return m.jwtKey, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithTimeFunc(m.now),
		)
		if err != nil || !token.Valid {
			logger.Warn("Session token rejected", slog.Any("error", err))
			response.Error(w, errors.UnauthorizedError("Invalid or expired session"))
			return
		}

		if claims.SessionID == uuid.Nil {
			logger.Warn("Session token without session id")
			response.Error(w, errors.UnauthorizedError("Invalid or expired session"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		ctx = context.WithValue(ctx, LoggerKey, logger.With(slog.String("sessionID", claims.SessionID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func SessionFromContext(ctx context.Context) (*models.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*models.SessionClaims)
	return claims, ok
}
