package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/adapters/repository"
	"github.com/IANDYI/maternal-care-service/internal/adapters/websocket"
	"github.com/IANDYI/maternal-care-service/internal/config"
	"github.com/IANDYI/maternal-care-service/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadAlertConsumerConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load alert consumer configuration")
	}
	log := logger.New(cfg.LogLevel, "maternal-alert-consumer")

	handler.RegisterAlertConsumerMetrics(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log, handler.ObserveConnection)
	go hub.Run(ctx)

	broadcaster := handler.NewAlertBroadcaster(hub, log)
	consumer := repository.NewAlertConsumer(cfg.QueueName, broadcaster, handler.ObserveAlertConsumed, log)
	if err := consumer.Connect(cfg.RabbitMQURL); err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer consumer.Close()

	if err := consumer.StartConsuming(ctx); err != nil {
		log.WithError(err).Fatal("failed to start consuming alerts")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey, log)
	defer authMiddleware.Stop()
	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", wsHandler.HandleWebSocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		admins, total := hub.ConnectedCounts()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":            "ok",
			"connected_clients": total,
			"connected_admins":  admins,
		})
	})

	// No write timeout: websocket connections are long lived
	server := &http.Server{
		Addr:              ":" + cfg.WebSocketPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":  cfg.WebSocketPort,
			"queue": cfg.QueueName,
		}).Info("starting alert consumer")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("websocket server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down alert consumer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("websocket server forced to shutdown")
	}

	log.Info("alert consumer exited")
}
