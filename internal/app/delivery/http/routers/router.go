package routers

import (
	"studyflow-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(router *chi.Mux, healthController *controllers.HealthController) {
	router.Get("/health", healthController.Check)
}
