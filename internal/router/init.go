package router

import (
	"github.com/argentumhq/argentum/internal/application"
	"github.com/argentumhq/argentum/internal/container"
	pginfra "github.com/argentumhq/argentum/internal/infrastructure/postgres"
	rabbitinfra "github.com/argentumhq/argentum/internal/infrastructure/rabbitmq"
	handlers "github.com/argentumhq/argentum/internal/interface/http"
	"github.com/argentumhq/argentum/internal/router/modules"
)

func buildAuthModule() *modules.AuthModule {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := application.NewService(
		repo,
		container.GetHasher(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)

	audit := rabbitinfra.NewAuditRecorder(container.GetRabbitPub(), container.GetLogger())
	handler := handlers.NewAuthHandler(service, audit, container.GetLogger())

	return modules.NewAuthModule(handler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
}
