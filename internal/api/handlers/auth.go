package handlers

import (
	"errors"
	"net/http"

	"github.com/stockfolio/backend/internal/api/request"
	"github.com/stockfolio/backend/internal/api/response"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/service"
	"github.com/stockfolio/backend/internal/validation"
)

// AuthHandler handles HTTP requests for account registration and login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler with the provided service dependency.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST requests to create a new account.
//
// Endpoint: POST /api/auth/register
// Request Body: RegisterRequest (email, password)
// Response: 201 Created with {id, email}
// Error: 400 Bad Request if validation fails or the email is taken
// Error: 500 Internal Server Error if creation fails
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRegister(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrDuplicateEmail.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to register", nil)
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST requests to authenticate and obtain a session token.
// The token is returned in the body and also set as a cookie for browser clients.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with {token}
// Error: 400 Bad Request if validation fails
// Error: 401 Unauthorized on bad credentials
// Error: 500 Internal Server Error otherwise
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	_, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to log in", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}
