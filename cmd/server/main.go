package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"voucher_mall/internal/cache"
	"voucher_mall/internal/config"
	"voucher_mall/internal/model"
	"voucher_mall/internal/queue"
	"voucher_mall/internal/router"
	"voucher_mall/internal/seckill"
)

func main() {
	// .env 仅本地开发用，不存在时静默跳过
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, perr := zerolog.ParseLevel(cfg.LogLevel); perr == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Info().Msg("starting voucher_mall")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SQLite + 自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	err = db.AutoMigrate(
		&model.Shop{},
		&model.Voucher{},
		&model.SeckillVoucher{},
		&model.VoucherOrder{},
		&model.Blog{},
		&model.Follow{},
		&model.OrderEvent{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	rdb := rd.NewClient(&rd.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis ping")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	cacheClient := cache.NewClient(rdb, cfg.CacheWorkers, cfg.CacheQueueSize)
	defer cacheClient.Close()

	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	seckillSvc := seckill.NewService(rdb, db)

	var wg sync.WaitGroup

	// 订单流消费者：异步落单
	worker := seckill.NewWorker(rdb, seckill.NewGormStore(db), producer, cfg.OrderStreamGroup, cfg.OrderStreamConsumer)
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Kafka 审计消费者
	auditConsumer := queue.NewAuditConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, db)
	defer auditConsumer.Close()
	wg.Add(1)
	go func() {
		defer wg.Done()
		auditConsumer.Run(ctx)
	}()

	// 双库存计数审计
	reconciler := seckill.NewReconciler(rdb, db, cfg.AuditInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		reconciler.Run(ctx)
	}()

	r := gin.Default()
	router.Setup(r, db, rdb, cacheClient, seckillSvc, cfg)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancel()
	wg.Wait()
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	log.Info().Msg("stopped")
}
