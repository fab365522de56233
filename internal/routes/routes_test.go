package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/producto-inventario/inventory-api/internal/auth"
	"github.com/producto-inventario/inventory-api/internal/middleware"
	"github.com/producto-inventario/inventory-api/internal/models"
	"github.com/producto-inventario/inventory-api/internal/product"
	apperrors "github.com/producto-inventario/inventory-api/pkg/errors"
)

const testPassword = "s3cret-password"

// stubProductStore implements product.Store in memory, recording what the
// dispatcher sends it.
type stubProductStore struct {
	lastCommand *product.Command
	calls       int

	products []product.Product
	status   product.Status
	err      error
}

func (s *stubProductStore) ExecuteQuery(_ context.Context, cmd *product.Command) ([]product.Product, product.Status, error) {
	s.calls++
	s.lastCommand = cmd
	return s.products, s.status, s.err
}

func (s *stubProductStore) ExecuteCommand(_ context.Context, cmd *product.Command) (product.Status, error) {
	s.calls++
	s.lastCommand = cmd
	return s.status, s.err
}

type stubUserStore struct {
	users map[string]*auth.User
}

func (s *stubUserStore) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

type testEnv struct {
	app    *fiber.App
	tokens *auth.TokenService
	store  *stubProductStore
}

// newTestEnv builds the app with the same pipeline as Setup, backed by stubs.
func newTestEnv(t *testing.T, store *stubProductStore) *testEnv {
	t.Helper()

	decimal.MarshalJSONWithoutQuotes = true

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	users := &stubUserStore{users: map[string]*auth.User{
		"mrodriguez": {ID: 42, Username: "mrodriguez", PasswordHash: string(hash), Estado: "A"},
	}}

	tokens := auth.NewTokenService("test-secret", "inventory-api", "inventory-web", 2*time.Hour)
	verifier := auth.NewVerifier(users, logger)
	authMw := middleware.NewAuthMiddleware(tokens, logger)

	authHandler := NewAuthHandler(verifier, tokens, logger)
	productHandler := NewProductHandler(product.NewDispatcher(store, logger), logger)

	app := fiber.New(fiber.Config{
		// Same normalization as the production error handler
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Ocurrió un error inesperado."
			if appErr, ok := err.(*apperrors.AppError); ok {
				code = appErr.HTTPStatus()
				message = appErr.Message
			}
			return c.Status(code).JSON(models.Fail(code, message))
		},
	})

	api := app.Group("/api")
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("", authMw.Authenticate())
	productRoutes := protected.Group("/products")
	productRoutes.Get("/", productHandler.Get)
	productRoutes.Post("/", productHandler.Create)
	productRoutes.Put("/:id", productHandler.Update)

	return &testEnv{app: app, tokens: tokens, store: store}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.Issue(auth.Identity{ID: 42, Username: "mrodriguez"})
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, target, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

// envelope mirrors models.APIResponse with a raw data payload for assertions
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
