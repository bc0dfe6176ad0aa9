package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user. Accounts with two-factor enabled get a challenge
// id to redeem at /auth/2fa/verify instead of a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoginResponse(res))
}

// VerifyTwoFactor redeems a login challenge with a TOTP code.
//
// @Summary      Complete a two-factor login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyTwoFactorRequest  true  "Challenge and code"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/2fa/verify [post]
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	var req verifyTwoFactorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.VerifyTwoFactor(c.Request().Context(), req.ChallengeID, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoginResponse(res))
}

// SetupTwoFactor generates a new TOTP secret for the caller. It stays
// disabled until confirmed through /auth/2fa/enable.
//
// @Summary      Start two-factor enrolment
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  twoFactorSetupResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/2fa/setup [post]
func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	setup, err := h.authService.SetupTwoFactor(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, twoFactorSetupResponse{Secret: setup.Secret, OTPAuthURL: setup.OTPAuthURL})
}

// EnableTwoFactor confirms enrolment with a first valid code.
//
// @Summary      Enable two-factor authentication
// @Tags         auth
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  enableTwoFactorRequest  true  "TOTP code"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/2fa/enable [post]
func (h *AuthHandler) EnableTwoFactor(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req enableTwoFactorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.EnableTwoFactor(c.Request().Context(), user.ID, req.Code); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity resolved for the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserContext
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates an account. Admins are confined to their own tenant.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.CreateUser(c.Request().Context(), actor, ports.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		TenantID: req.TenantID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

func toLoginResponse(res *ports.LoginResult) loginResponse {
	if res.ChallengeID != "" {
		return loginResponse{TwoFactorRequired: true, ChallengeID: res.ChallengeID}
	}
	return loginResponse{Token: res.Token, User: toUserResponse(res.User)}
}
