package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/auth"
	"github.com/producto-inventario/inventory-api/internal/metrics"
	"github.com/producto-inventario/inventory-api/internal/models"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	verifier *auth.Verifier
	tokens   *auth.TokenService
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(verifier *auth.Verifier, tokens *auth.TokenService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user and return a JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 500 {object} models.APIResponse "Internal error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.Fail(fiber.StatusBadRequest, "Solicitud inválida."),
		)
	}

	identity, err := h.verifier.Verify(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.RecordAuthAttempt(false)
			h.logger.WithField("username", req.Username).Warn("Login attempt failed")
			// Deliberately identical for unknown users and wrong passwords
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.Fail(fiber.StatusUnauthorized, "Usuario o contraseña invalidos."),
			)
		}
		return err
	}

	token, err := h.tokens.Issue(identity)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		return err
	}

	metrics.RecordAuthAttempt(true)
	h.logger.WithFields(logrus.Fields{
		"user_id":  identity.ID,
		"username": identity.Username,
	}).Info("User logged in successfully")

	return c.JSON(models.OK(fiber.StatusOK, "Autenticación exitosa", models.TokenData{Token: token}))
}
