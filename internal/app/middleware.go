package app

import (
	"github.com/hokkyo/cpadash-backend/internal/middleware"
	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
)

type Middleware struct {
	Request *middleware.RequestMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Request: middleware.NewRequestMiddleware(log),
	}
}
