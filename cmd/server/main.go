package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RCodeTree/market-service/internal/controller"
	"github.com/RCodeTree/market-service/internal/model"
	"github.com/RCodeTree/market-service/internal/router"
	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/config"
	"github.com/RCodeTree/market-service/pkg/database"
	"github.com/RCodeTree/market-service/pkg/discovery"
	"github.com/RCodeTree/market-service/pkg/jwt"
	"github.com/RCodeTree/market-service/pkg/mq"
	"github.com/RCodeTree/market-service/pkg/search"
	"github.com/RCodeTree/market-service/pkg/tracer"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnvOverrides()

	jwt.SetSecret(cfg.Jwt.Secret)

	// 链路追踪，未配置 Jaeger 时跳过
	if cfg.Jaeger.Endpoint != "" {
		tp, err := tracer.InitTracer(cfg.Service.Name, cfg.Jaeger.Endpoint)
		if err != nil {
			log.Printf("初始化 Tracer 失败，链路追踪不可用: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()
		}
	}

	db, err := database.InitMySQL(cfg.Mysql)
	if err != nil {
		log.Fatalf("Failed to connect MySQL: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.LoginLog{},
		&model.Favorite{},
		&model.Address{},
		&model.Product{},
		&model.Category{},
		&model.ProductImage{},
		&model.SpecName{},
		&model.SpecValue{},
		&model.Review{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis 挂了服务照常跑，只是登出黑名单和支付状态缓存失效
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb, err = database.InitRedis(cfg.Redis)
		if err != nil {
			log.Printf("连接 Redis 失败，缓存功能不可用: %v", err)
			rdb = nil
		}
	}

	// RabbitMQ 同样可选，订单事件尽力投递
	var publisher *mq.Publisher
	if cfg.Mq.Url != "" {
		publisher, err = mq.NewPublisher(cfg.Mq.Url)
		if err != nil {
			log.Printf("连接 RabbitMQ 失败，订单事件不发送: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	var searchClient *search.Client
	if cfg.Elastic.Url != "" {
		searchClient, err = search.NewClient(cfg.Elastic.Url)
		if err != nil {
			log.Printf("连接 Elasticsearch 失败，关键词搜索走数据库: %v", err)
			searchClient = nil
		}
	}

	userService := service.NewUserService(db, rdb)
	productService := service.NewProductService(db, searchClient)
	cartService := service.NewCartService(db)
	orderService := service.NewOrderService(db, rdb, publisher)

	// 启动时把在售商品同步进搜索索引
	if searchClient != nil {
		if err := productService.SyncSearchIndex(context.Background()); err != nil {
			log.Printf("同步搜索索引失败: %v", err)
		}
	}

	r := router.New(cfg.Service.Name, rdb, router.Controllers{
		User:    controller.NewUserController(userService),
		Product: controller.NewProductController(productService),
		Cart:    controller.NewCartController(cartService),
		Order:   controller.NewOrderController(orderService),
	})

	// 服务注册，本地开发没有 Consul 时跳过
	if cfg.Consul.Address != "" {
		if err := discovery.RegisterService(cfg.Service.Name, cfg.Service.Port, cfg.Consul.Address); err != nil {
			log.Printf("注册 Consul 失败: %v", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Service.Port),
		Handler: r,
	}

	go func() {
		log.Printf("%s listening on :%d", cfg.Service.Name, cfg.Service.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
