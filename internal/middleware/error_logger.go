package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/logging"
	"github.com/producto-inventario/inventory-api/internal/utils"
)

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with detailed context
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode < 400 {
			return err
		}

		duration := time.Since(startTime)

		logFields := logrus.Fields{
			"status_code":   statusCode,
			"method":        c.Method(),
			"path":          c.Path(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"duration_ms":   duration.Milliseconds(),
			"response_size": len(c.Response().Body()),
		}

		if identity, ok := GetIdentity(c); ok {
			logFields["user_id"] = identity.ID
		}

		if len(c.Request().URI().QueryString()) > 0 {
			logFields["query"] = string(c.Request().URI().QueryString())
		}

		// Request bodies on /auth carry credentials, never log them
		if c.Path() != "/api/auth/login" && (c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH") {
			if body := string(c.Body()); len(body) > 0 {
				logFields["request_body"] = utils.Truncate(body, 500)
			}
		}

		if responseBody := string(c.Response().Body()); len(responseBody) > 0 {
			logFields["response_body"] = utils.Truncate(responseBody, 500)
		}

		requestID := c.GetRespHeader(fiber.HeaderXRequestID)
		logEntry := logging.WithRequestID(e.logger, requestID).WithFields(logFields)

		if statusCode >= 500 {
			if err != nil {
				logEntry = logEntry.WithError(err)
			}
			logEntry.Error("Server error response")
		} else {
			logEntry.Warn("Client error response")
		}

		return err
	}
}
