package main

import (
	"CloudStash/config"
	"CloudStash/internal/handler"
	"CloudStash/internal/repo"
	"CloudStash/internal/service"
	"CloudStash/internal/storage"
	"CloudStash/router"
	"CloudStash/utils"
	"log"

	"github.com/joho/godotenv"
)

// main wires every handle explicitly and starts the HTTP server.
func main() {
	_ = godotenv.Load()
	config.InitConfig()

	logger := utils.NewLogger()
	db := repo.InitMysql()
	rdb := repo.InitRedis()
	store := storage.InitMinio()

	ledger := service.NewQuotaLedger(config.AppConfig.UserStorageQuotaBytes)
	cache := utils.NewFileListCache(utils.NewRedisCache(rdb))
	tokens := utils.NewTokenStore(rdb)

	users := service.NewUserService(db)
	lifecycle := service.NewFileLifecycle(
		db,
		store,
		config.AppConfig.S3Bucket,
		ledger,
		cache,
		config.AppConfig.S3RequestTimeout,
	)

	r := router.InitRouter(
		handler.NewAuthHandler(users, tokens),
		handler.NewFileHandler(lifecycle),
		tokens,
		logger,
	)

	if err := r.Run(":" + config.AppConfig.Port); err != nil {
		log.Fatal("server exited:", err)
	}
}
