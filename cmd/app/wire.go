//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/avallejos/visitauth/internal/bootstrap"
	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
	"github.com/avallejos/visitauth/internal/infra/config"
	httpiface "github.com/avallejos/visitauth/internal/interface/http"
	"github.com/avallejos/visitauth/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideUserStore,
		provideAuthStore,
		provideVisitsStore,
		provideProviderClient,
		provideNotifier,
		auth.NewService,
		visits.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
