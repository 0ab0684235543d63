package main

import (
	"go.uber.org/fx"

	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/config"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/db"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/enrich"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/service"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			db.NewGormClient,
			db.NewBookmarkRepo,
			enrich.NewExtractor,
			enrich.NewSummarizer,
			func(r *db.BookmarkRepo) service.Repository { return r },
			func(e *enrich.Extractor) service.MetadataSource { return e },
			func(s *enrich.Summarizer) service.Summarizer { return s },
			service.NewGeneral,
			service.NewIngestor,
			transport.NewHTTPServer,
		),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)

	app.Run()
}
