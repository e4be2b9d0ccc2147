package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	httpadapter "municipal-tasks/internal/adapters/input/http"
	"municipal-tasks/internal/adapters/output/firebaseauth"
	fsadapter "municipal-tasks/internal/adapters/output/firestore"
	"municipal-tasks/internal/adapters/output/postgres"
	"municipal-tasks/internal/config"
	"municipal-tasks/internal/core/service"
	dbinfra "municipal-tasks/internal/infrastructure/db"
	fbinfra "municipal-tasks/internal/infrastructure/firebase"
	"municipal-tasks/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	Config     *config.Config
	Log        *zap.Logger
	Board      *service.BoardService
	HTTPServer *http.Server
	close      func()
}

func Init(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.Init(cfg.Logger.Env)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	fsClient, authClient, err := fbinfra.Connect(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile, log)
	if err != nil {
		log.Error("failed to connect to firestore", zap.Error(err))
		_ = log.Sync()
		return nil, err
	}

	pool, err := dbinfra.ConnectToDB(ctx, cfg.GetDSN(), log)
	if err != nil {
		log.Error("failed to connect to db", zap.Error(err))
		_ = fsClient.Close()
		_ = log.Sync()
		return nil, err
	}

	store := fsadapter.NewStore(fsClient, log)
	archive := postgres.NewDeletionArchive(pool, log)
	sessions := firebaseauth.NewSessionSource(authClient, tokenFromFile(cfg.Session.TokenFile), log)

	board, err := buildBoard(ctx, cfg, store, archive, sessions, log)
	if err != nil {
		log.Error("failed to init board service", zap.Error(err))
		pool.Close()
		_ = fsClient.Close()
		_ = log.Sync()
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	httpadapter.MountRoutes(router, httpadapter.NewHandlers(board, log))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: router,
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Board:      board,
		HTTPServer: server,
		close: func() {
			pool.Close()
			_ = fsClient.Close()
			_ = log.Sync()
		},
	}, nil
}

func buildBoard(
	ctx context.Context,
	cfg *config.Config,
	store *fsadapter.Store,
	archive *postgres.DeletionArchive,
	sessions *firebaseauth.SessionSource,
	log *zap.Logger,
) (*service.BoardService, error) {
	gate, err := service.NewSessionGate(sessions, log)
	if err != nil {
		return nil, err
	}
	stream, err := service.NewSubtaskStream(store, store, log)
	if err != nil {
		return nil, err
	}
	aggregator, err := service.NewProgressAggregator(store, stream, log)
	if err != nil {
		return nil, err
	}
	coordinator, err := service.NewProgressCoordinator(aggregator, log)
	if err != nil {
		return nil, err
	}
	reconciler, err := service.NewListReconciler(ctx, archive, log)
	if err != nil {
		return nil, err
	}

	return service.NewBoardService(gate, store, reconciler, coordinator, service.BoardConfig{
		Area:                cfg.Board.Area,
		SessionAttempts:     cfg.Session.MaxAttempts,
		SessionInitialDelay: cfg.Session.InitialDelay,
		SettleDelay:         cfg.Session.SettleDelay,
	}, log)
}

func tokenFromFile(path string) firebaseauth.TokenProvider {
	return func() (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
}

func (a *App) Close() {
	if a == nil || a.close == nil {
		return
	}
	a.close()
}
