// Package httpapi exposes the authentication use cases over HTTP using gin:
// request binding and validation, bearer authentication middleware, and the
// mapping from service errors to status codes.
package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cheridanh/infradev/internal/common"
	"github.com/cheridanh/infradev/internal/logging"
	"github.com/cheridanh/infradev/internal/server/auth"
	"github.com/cheridanh/infradev/internal/server/repositories/repomanager"
	"github.com/cheridanh/infradev/internal/server/services"
)

// Handler holds the dependencies of the HTTP layer. It stays thin: every
// decision about tokens or credentials lives in the services.
type Handler struct {
	auth        *services.AuthService
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	logger      logging.Logger
}

func NewHandler(authService *services.AuthService, db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, logger logging.Logger) *Handler {
	return &Handler{
		auth:        authService,
		db:          db,
		repomanager: m,
		codec:       codec,
		logger:      logger.With("module", "httpapi"),
	}
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	pair, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAPIResponse("user registered", newAuthResponse(pair)))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAPIResponse("login successful", newAuthResponse(pair)))
}

func (h *Handler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.RefreshToken == "" {
		h.writeError(c, common.ErrMissingRefreshToken)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAPIResponse("token refreshed", newAuthResponse(pair)))
}

func (h *Handler) logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAPIResponse("logged out", nil))
}

func (h *Handler) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		// RequireAuth guards this route; reaching here without a principal
		// means the route was wired without it.
		h.abortInternal(c, errors.New("no principal on protected route"))
		return
	}
	c.JSON(http.StatusOK, newAPIResponse("", newUserResponse(user)))
}

// badRequest reports a binding or validation failure. Field-level validator
// errors are listed per field.
func (h *Handler) badRequest(c *gin.Context, err error) {
	resp := newErrorResponse(http.StatusBadRequest, "Bad Request", "invalid request body", c.Request.URL.Path)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.ValidationErrors = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.ValidationErrors[fe.Field()] = validationMessage(fe)
		}
		resp.Message = "validation failed"
	}

	c.JSON(http.StatusBadRequest, resp)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "password":
		return "must be at least 10 characters with upper case, lower case, a digit and a special character"
	default:
		return "is invalid"
	}
}

// writeError maps service errors onto HTTP statuses. Anything unmatched is a
// 500 with a generic body; the cause only goes to the log.
func (h *Handler) writeError(c *gin.Context, err error) {
	path := c.Request.URL.Path
	switch {
	case errors.Is(err, common.ErrEmailExists):
		c.JSON(http.StatusConflict,
			newErrorResponse(http.StatusConflict, "Conflict", err.Error(), path))
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrRefreshTokenInvalid),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrMalformedToken):
		c.JSON(http.StatusUnauthorized,
			newErrorResponse(http.StatusUnauthorized, "Unauthorized", err.Error(), path))
	case errors.Is(err, common.ErrMissingRefreshToken):
		c.JSON(http.StatusBadRequest,
			newErrorResponse(http.StatusBadRequest, "Bad Request", err.Error(), path))
	default:
		h.abortInternal(c, err)
	}
}
