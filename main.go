package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voyago/voyago/internal/pkg/config"
	"github.com/voyago/voyago/internal/pkg/logger"
	"github.com/voyago/voyago/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	if err := logger.Init(zapcore.InfoLevel, zap.String("service", "voyago")); err != nil {
		return err
	}
	l := logger.Log
	defer l.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, l)
	if err != nil {
		return err
	}
	defer srv.Close()

	router := server.SetupRouter(srv.DBPool(), cfg, l)
	srv.SetRouter(router)

	server.StartPprofServer(cfg.PprofPort, l)

	httpServer := srv.HTTPServer()
	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, l, done)

	l.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	l.Info("Graceful shutdown complete")
	return nil
}
