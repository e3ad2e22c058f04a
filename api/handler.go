package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/userservice/auth"
	"github.com/kbukum/userservice/auth/authctx"
	"github.com/kbukum/userservice/auth/token"
	"github.com/kbukum/userservice/credential"
	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/server"
	"github.com/kbukum/userservice/server/middleware"
	"github.com/kbukum/userservice/validation"
)

// CredentialService is the subset of *credential.Service the handlers use.
type CredentialService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (credential.LoginResult, error)
}

// UserHandler serves the /user routes.
type UserHandler struct {
	svc CredentialService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc CredentialService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Routes lists the dependencies RegisterRoutes wires in.
type Routes struct {
	Handler   *UserHandler
	Validator auth.TokenValidator
	// LoginLimit runs before the login handler. Nil disables throttling.
	LoginLimit gin.HandlerFunc
}

// RegisterRoutes mounts the /user group on r.
func RegisterRoutes(r gin.IRouter, routes Routes) {
	g := r.Group("/user")
	g.POST("/register", routes.Handler.Register)

	login := []gin.HandlerFunc{routes.Handler.Login}
	if routes.LoginLimit != nil {
		login = append([]gin.HandlerFunc{routes.LoginLimit}, login...)
	}
	g.POST("/login", login...)

	g.GET("/me", middleware.Auth(routes.Validator), routes.Handler.Me)
}

// Register handles POST /user/register.
func (h *UserHandler) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, RegisterResponse{})
}

// Login handles POST /user/login.
func (h *UserHandler) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, LoginResponse{Token: result.Token})
}

// Me handles GET /user/me. It must run behind middleware.Auth.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := authctx.Get[token.Claims](c.Request.Context())
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	id, err := claims.UserID()
	if err != nil {
		server.RespondWithError(c, apperrors.MalformedToken().WithCause(err))
		return
	}
	server.RespondOK(c, MeResponse{
		ID:        id,
		Username:  claims.Username(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	})
}

// bindCredentials decodes and validates the request body, writing the error
// response itself when it fails.
func bindCredentials(c *gin.Context) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput,
				"Request body too large.", http.StatusRequestEntityTooLarge).WithCause(err))
			return req, false
		}
		server.RespondWithError(c, apperrors.InvalidInput("Malformed request body.").WithCause(err))
		return req, false
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return req, false
	}
	return req, true
}
