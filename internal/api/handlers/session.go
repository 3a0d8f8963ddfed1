package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/models"
	service "github.com/aaravmahajanofficial/art-storefront/internal/services"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
	"github.com/google/uuid"
)

// TokenIssuer signs session tokens; *middleware.SessionMiddleware implements it.
type TokenIssuer interface {
	IssueToken(sessionID uuid.UUID) (string, time.Time, error)
}

type SessionHandler struct {
	issuer      TokenIssuer
	cartService service.CartService
}

func NewSessionHandler(issuer TokenIssuer, cartService service.CartService) *SessionHandler {
	return &SessionHandler{issuer: issuer, cartService: cartService}
}

// sessionClaims pulls the verified session off the request, writing a 401
// when it is missing.
func sessionClaims(w http.ResponseWriter, r *http.Request) (*models.SessionClaims, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		logger.Warn("Request without session")
		response.Error(w, errors.UnauthorizedError("Session required"))
		return nil, logger, false
	}

	return claims, logger.With(slog.String("sessionID", claims.SessionID.String())), true
}

// CreateSession godoc
//
//	@Summary		Start a storefront session
//	@Description	Issues a bearer token identifying a new anonymous session. The session owns one cart.
//	@Tags			Sessions
//	@Produce		json
//	@Success		201	{object}	models.SessionResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/sessions [post]
func (h *SessionHandler) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID := uuid.New()

		token, expiresAt, err := h.issuer.IssueToken(sessionID)
		if err != nil {
			logger.Error("Failed to sign session token", slog.Any("error", err))
			response.Error(w, errors.InternalError("Failed to start session").WithError(err))
			return
		}

		logger.Info("Session started", slog.String("sessionID", sessionID.String()))
		response.Success(w, http.StatusCreated, models.SessionResponse{
			SessionID: sessionID,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}
}

// EndSession stops the session's cart store. The persisted snapshot is kept.
func (h *SessionHandler) EndSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, logger, ok := sessionClaims(w, r)
		if !ok {
			return
		}

		h.cartService.Release(claims.SessionID.String())

		logger.Info("Session ended")
		w.WriteHeader(http.StatusNoContent)
	}
}
