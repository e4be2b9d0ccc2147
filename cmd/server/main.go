package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"municipal-tasks/internal/infrastructure/app"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Init(ctx)
	if err != nil {
		fmt.Printf("app init error: %v\n", err)
		return
	}
	defer application.Close()

	go func() {
		if err := application.Board.Start(ctx); err != nil {
			application.Log.Error("board start failed", zap.Error(err))
		}
	}()

	go func() {
		application.Log.Info("http server started", zap.String("addr", application.HTTPServer.Addr))
		if err := application.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Log.Error("http server stopped", zap.Error(err))
		}
	}()

	application.Log.Info("server is starting",
		zap.String("env", application.Config.Logger.Env),
		zap.String("area", application.Config.Board.Area))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	s := <-quit
	application.Log.Info("shutting down server", zap.String("signal", s.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := application.HTTPServer.Shutdown(shutdownCtx); err != nil {
		application.Log.Error("http shutdown failed", zap.Error(err))
	}

	application.Board.Stop()
	cancel()
	application.Log.Info("server stopped")
}
