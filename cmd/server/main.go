package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"order-service/internal/config"
	"order-service/internal/controllers/http"
	"order-service/internal/infra"
	mmysql "order-service/internal/infra/mysql"
	"order-service/internal/infra/rabbitmq"
	"order-service/internal/inventory"
	"order-service/internal/logging"
	mysqlrepo "order-service/internal/repository/mysql"
	"order-service/internal/services"
)

func main() {
	logger := logging.GetSugaredLogger()
	defer logger.Sync()

	cfg := config.GetConfig(logger)

	db, err := mmysql.NewMySQL(cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
	if err != nil {
		logger.Fatalw("db connect failed", "err", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalw("db handle failed", "err", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	repo := mysqlrepo.NewOrderRepository(db, logger)

	catalog := infra.NewCatalogClient(cfg.CatalogURL, cfg.CatalogTimeout)
	ledger := inventory.NewLedger(catalog, logger)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, logger)
	if err != nil {
		logger.Fatalw("failed to init publisher", "err", err)
	}
	defer publisher.Close()

	s := services.NewOrderService(repo, catalog, ledger, publisher, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	handler := http.NewHandler(s, redisClient, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	logger.Infow("starting order service", "addr", cfg.RunAddress)
	if err := r.Run(cfg.RunAddress); err != nil {
		logger.Fatalw("server run failed", "err", err)
	}
}
