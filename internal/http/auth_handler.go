package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/service"
)

const forgotPasswordMessage = "If an account exists with this email, you will receive password reset instructions."

// AuthHandler mantiene dependencias para endpoints de /api/auth.
type AuthHandler struct {
	logger  *zap.Logger
	userSvc *service.UserService
	otpSvc  *service.OTPService
}

// NewAuthHandler crea una instancia de AuthHandler.
func NewAuthHandler(logger *zap.Logger, userSvc *service.UserService, otpSvc *service.OTPService) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, userSvc: userSvc, otpSvc: otpSvc}
}

// SendOTP maneja POST /api/auth/send-otp.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send otp request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.otpSvc.Request(c.Request.Context(), req.Email, req.Name); err != nil {
		respondError(c, h.logger, "send otp", err)
		return
	}
	respondOK(c, http.StatusOK, "OTP sent to your email successfully", nil)
}

// Signup maneja POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		DateOfBirth string `json:"dateOfBirth"`
		Password    string `json:"password"`
		OTP         string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.userSvc.Signup(c.Request.Context(), service.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Password:    req.Password,
		OTP:         req.OTP,
	})
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}
	respondOK(c, http.StatusCreated, "User registered successfully", gin.H{"user": res.User, "token": res.Token})
}

// Signin maneja POST /api/auth/signin.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signin request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.userSvc.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "signin", err)
		return
	}
	respondOK(c, http.StatusOK, "User authenticated successfully", gin.H{"user": res.User, "token": res.Token})
}

// Me maneja GET /api/auth/me. Requiere AuthMiddleware.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}
	respondOK(c, http.StatusOK, "User data retrieved successfully", gin.H{"data": user})
}

// ForgotPassword maneja POST /api/auth/forgot-password.
// La respuesta es la misma exista o no la cuenta.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot password request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.userSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "forgot password", err)
		return
	}
	respondOK(c, http.StatusOK, forgotPasswordMessage, nil)
}

// ResetPassword maneja POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.userSvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.logger, "reset password", err)
		return
	}
	respondOK(c, http.StatusOK, "Password reset successfully. You can now sign in with your new password.", nil)
}
