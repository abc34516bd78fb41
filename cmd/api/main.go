package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fadhilr/go-shop-orders/internal/config"
	"github.com/fadhilr/go-shop-orders/internal/httpx"
	kafkax "github.com/fadhilr/go-shop-orders/internal/kafka"
	"github.com/fadhilr/go-shop-orders/internal/postgres"
	"github.com/fadhilr/go-shop-orders/internal/redisx"
	"github.com/fadhilr/go-shop-orders/internal/shop"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: order status changes + sold-out fan-out
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderStatus, 1024)
	pStatus.Start(ctx)
	pSoldOut := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicStockSoldOut, 1024)
	pSoldOut.Start(ctx)

	// Ledgers, classifier, coordinator
	accounts := &shop.PGAccountLedger{DB: db}
	catalog := &shop.PGCatalog{DB: db}
	orders := &shop.PGOrderRepo{DB: db}
	notifier := &shop.Notifier{
		Catalog: catalog,
		Cart:    &shop.RedisCart{RDB: rdb},
		Status:  pStatus,
		SoldOut: pSoldOut,
		Service: cfg.ServiceName,
	}
	coord := &shop.Coordinator{
		DB:         db,
		Orders:     orders,
		Stock:      &shop.PGStockLedger{DB: db},
		Accounts:   accounts,
		Classifier: &shop.Classifier{Accounts: accounts, Grades: &shop.PGGradeRepo{DB: db}},
		Catalog:    catalog,
		Events:     notifier,
		TxTimeout:  cfg.TxTimeout,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Coordinator: coord,
		Orders:      orders,
		Redis:       rdb,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pStatus.Close()
	pSoldOut.Close()
	cancel()
	pStatus.WaitClosed()
	pSoldOut.WaitClosed()
}
