package router

import (
	"github.com/kaamsetu/kaamsetu-api/internal/application"
	"github.com/kaamsetu/kaamsetu-api/internal/container"
	pginfra "github.com/kaamsetu/kaamsetu-api/internal/infrastructure/postgres"
	handlers "github.com/kaamsetu/kaamsetu-api/internal/interface/http"
	"github.com/kaamsetu/kaamsetu-api/internal/router/modules"
	"github.com/kaamsetu/kaamsetu-api/pkg/resume"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	identities := pginfra.NewIdentityRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	audit := application.NewRecorder(
		pginfra.NewAuditRepository(pool),
		container.GetLogger(),
		container.GetES(),
		cfg.ESAuditIndex,
	)

	// Avoid a typed-nil publisher when RabbitMQ is not configured.
	var pub application.EventPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	svc := application.NewAuthService(
		identities,
		profiles,
		audit,
		container.GetTokens(),
		container.GetRedis(),
		pub,
		container.GetLogger(),
		cfg.OTPTTL,
		!cfg.IsProduction(),
	)

	handler := handlers.NewAuthHandler(svc, pool, container.GetLogger())
	return modules.NewAuthModule(handler, container.GetTokens())
}

func buildResumeModule() *modules.ResumeModule {
	cfg := container.GetConfig()
	handler := handlers.NewResumeHandler(resume.NewClient(cfg.ResumeServiceURL), container.GetLogger())
	return modules.NewResumeModule(handler, container.GetTokens())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(buildResumeModule())
	r.Add(modules.NewDebugModule())
}
