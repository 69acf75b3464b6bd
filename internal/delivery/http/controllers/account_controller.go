package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/middleware"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"
)

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"operator@example.com"`
	Password string `json:"password" example:"secret123"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the data payload for POST /api/auth/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// LoginSuccessResponse is the success response envelope for POST /api/auth/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AccountController handles operator sign-in for both the pages and the API.
type AccountController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	Views        *views.Renderer
	CookieMaxAge time.Duration
	SecureCookie bool
}

func NewAccountController(logger *slog.Logger, svc domain.AuthService, v *views.Renderer, tokenExpiry time.Duration, secure bool) *AccountController {
	return &AccountController{
		Logger:       logger,
		Service:      svc,
		Views:        v,
		CookieMaxAge: tokenExpiry,
		SecureCookie: secure,
	}
}

func (c *AccountController) LoginForm(w http.ResponseWriter, r *http.Request) {
	c.Views.Render(w, r, http.StatusOK, views.Login, "Log in", views.LoginPage{
		ReturnURL: safeReturnURL(r.URL.Query().Get("returnUrl")),
	})
}

// Login checks the posted credentials and stores the token in an HttpOnly cookie.
func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	returnURL := safeReturnURL(r.PostFormValue("returnUrl"))

	token, _, err := c.Service.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Views.Render(w, r, http.StatusUnauthorized, views.Login, "Log in", views.LoginPage{
				Email:     email,
				ReturnURL: returnURL,
				Error:     "Invalid login attempt.",
			})
			return
		}
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

func (c *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/shows", http.StatusSeeOther)
}

// APILogin godoc
// @Summary Log in as operator
// @Description Exchanges operator credentials for a JWT to send as Authorization: Bearer on write endpoints.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/login [post]
func (c *AccountController) APILogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid email or password")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" example:"stage-manager@example.com"`
	Password string `json:"password" example:"secret123"`
}

// Validate implements Validator. Format and length rules are enforced by the service.
func (r RegisterRequest) Validate() []string {
	return LoginRequest(r).Validate()
}

// UserSuccessResponse is the success response envelope for POST /api/auth/register (201).
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// APIRegister godoc
// @Summary Add an operator account
// @Description An authenticated operator creates another operator. Password must be at least 8 characters.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param credentials body RegisterRequest true "Email and password"
// @Success 201 {object} controllers.UserSuccessResponse "data contains the new operator"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/register [post]
func (c *AccountController) APIRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already in use")
			return
		}
		writeAPIError(c.Logger, w, r, err, "not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}
