package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/glimmer-social/backend/internal/auth/service"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	commonhttp "github.com/glimmer-social/backend/internal/common/http"
	"github.com/glimmer-social/backend/internal/common/logger"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type loginRequest struct {
	// Login takes either the email or the username; Email is accepted as an
	// alias for older clients.
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type Handler struct {
	auth     *service.Service
	validate *validator.Validate
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func NewHandler(auth *service.Service, log *logger.Logger) http.Handler {
	h := &Handler{
		auth:     auth,
		validate: validator.New(),
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/verify-email/{id}", h.verifyEmail)
	mux.HandleFunc("POST /auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.resetPassword)
	mux.HandleFunc("POST /auth/google-login", h.googleLogin)
	return mux
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := commonhttp.DecodeJSON(r, v); err != nil {
		h.log.Warnf("invalid json on %s: %v", r.URL.Path, err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, err.Error(), nil, "")
		return false
	}
	return true
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{UserID: userID, Status: "pending"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	lookup := req.Login
	if lookup == "" {
		lookup = req.Email
	}
	if lookup == "" {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidCredentials)
		return
	}

	result, err := h.auth.Login(r.Context(), lookup, req.Password)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req verifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.auth.VerifyEmail(r.Context(), userID, req.OTP)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.UserID, req.Token, req.Password); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.auth.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, result)
}
