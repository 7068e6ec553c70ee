//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/agrocalc/internal/bootstrap"
	"github.com/yanqian/agrocalc/internal/domain/dose"
	"github.com/yanqian/agrocalc/internal/domain/harvest"
	"github.com/yanqian/agrocalc/internal/domain/history"
	"github.com/yanqian/agrocalc/internal/infra/config"
	"github.com/yanqian/agrocalc/internal/infra/report/xlsx"
	httpiface "github.com/yanqian/agrocalc/internal/interface/http"
	"github.com/yanqian/agrocalc/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideHistoryConfig,
		provideDoseConfig,
		provideHistoryRepository,
		provideReportStorage,
		xlsx.NewRenderer,
		wire.Bind(new(history.ReportRenderer), new(*xlsx.Renderer)),
		history.NewService,
		provideHarvestRecorder,
		provideDoseRecorder,
		provideStockProvider,
		provideWeatherClient,
		harvest.NewService,
		dose.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
