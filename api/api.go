package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *utils.Logger
}

// NewAPIServer creates the fiber app. bodyLimit bounds request bodies, uploads included.
func NewAPIServer(listenAddress string, bodyLimit int, log *utils.Logger) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      "admission-bridge",
		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler(log),
	})

	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
		log:           log,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("starting API server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// errorHandler renders errors that escaped the handlers in the response envelope
func errorHandler(log *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return response.NotFound(c, "Route not found")
			case fiber.StatusMethodNotAllowed:
				return response.Error(c, fe.Code, fe.Message, "METHOD_NOT_ALLOWED")
			case fiber.StatusRequestEntityTooLarge:
				return response.Error(c, fe.Code, "Request body too large", "PAYLOAD_TOO_LARGE")
			default:
				return response.Error(c, fe.Code, fe.Message, "ERROR")
			}
		}

		log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return response.InternalServerError(c, "")
	}
}
