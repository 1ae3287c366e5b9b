package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/api"
	"github.com/rryowa/blogapi/internal/controller"
	"github.com/rryowa/blogapi/internal/filestore"
	"github.com/rryowa/blogapi/internal/migrations"
	"github.com/rryowa/blogapi/internal/service"
	"github.com/rryowa/blogapi/internal/storage/postgres"
	redisstorage "github.com/rryowa/blogapi/internal/storage/redis"
	"github.com/rryowa/blogapi/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	storageCfg := util.NewStorageConfig()
	photoStore, err := filestore.NewFileStore(storageCfg)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	storage := postgres.NewStorage(db)
	denylist := redisstorage.NewTokenDenylist(redisClient)

	tokenCfg := util.NewTokenConfig()
	tokenService := service.NewTokenService(tokenCfg, storage, denylist)
	webhookService := service.NewWebhookService(logger, util.GetWebhookURL())
	authService := service.NewAuthService(tokenService, storage, webhookService, logger)
	blogService := service.NewBlogService(storage, photoStore, logger)
	commentService := service.NewCommentService(storage)

	controller := controller.NewController(logger, authService, blogService, commentService, tokenCfg)

	apiServer := api.NewAPI(controller, authService, util.NewServerConfig(), storageCfg.Dir, logger, cleanupFuncs)
	apiServer.Run(ctx)
}
