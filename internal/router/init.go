package router

import (
	"context"

	userapp "github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/container"
	"github.com/oksasatya/user-account-service/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/router/modules"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// userObservers collects the post-commit listeners that are switched on.
func userObservers() []userapp.UserObserver {
	var obs []userapp.UserObserver
	if pub := container.GetRabbitPub(); pub != nil {
		obs = append(obs, messaging.NewUserEventPublisher(pub))
	}
	if idx := container.GetUserIndex(); idx != nil {
		obs = append(obs, idx)
	}
	return obs
}

// userServiceFactory returns a factory that opens one repository per request.
func userServiceFactory() handlers.ServiceFactory {
	pool := container.GetPGPool()
	logger := container.GetLogger()
	minAge := container.GetConfig().UserMinAge
	observers := userObservers()

	return func() (*userapp.UserService, func()) {
		repo := pginfra.NewUserRepository(pool)
		svc := userapp.NewUserService(repo, helpers.BcryptHasher{}, userapp.SystemClock{}, logger, observers...)
		if minAge > 0 {
			svc.MinAge = minAge
		}
		return svc, func() { repo.Rollback(context.Background()) }
	}
}

func buildUserHandler() *handlers.UserHandler {
	var searcher handlers.UserSearcher
	if idx := container.GetUserIndex(); idx != nil {
		searcher = idx
	}
	return handlers.NewUserHandler(userServiceFactory(), searcher, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	r.Add(modules.NewUserModule(buildUserHandler(), container.GetRedis(), cfg.RateLimitReadPerMin, cfg.RateLimitWritePerMin))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
