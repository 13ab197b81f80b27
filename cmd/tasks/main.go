package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/logging"
	"taskboard/internal/server"
	db "taskboard/repository/db"
	inmemory "taskboard/repository/inmemory"
	mongostore "taskboard/repository/mongo"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := server.ReadConfig(args)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.GinMode == gin.DebugMode)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStorage(ctx, cfg, log)
	defer store.close()

	api, err := server.NewTaskAPI(store.users, store.tasks, cfg, log)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- api.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info(context.Background(), "server stopped")
		return nil

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}

type storage struct {
	users server.UserRepository
	tasks server.TaskRepository
	kind  string
	close func()
}

func memoryStorage() storage {
	s := inmemory.NewStorage()
	return storage{users: s, tasks: s, kind: server.StorageMemory, close: func() {}}
}

// openStorage connects the configured backend. When the backend is
// unreachable the service keeps running on process memory.
func openStorage(ctx context.Context, cfg *server.Config, log logging.Logger) storage {
	switch cfg.Storage {
	case server.StoragePostgres:
		if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
			log.Warn(ctx, "postgres migrations failed, using in-memory storage", "error", err)
			return memoryStorage()
		}
		s, err := db.NewStorage(ctx, cfg.DBStr, log)
		if err != nil {
			log.Warn(ctx, "postgres unavailable, using in-memory storage", "error", err)
			return memoryStorage()
		}
		return storage{users: s, tasks: s, kind: server.StoragePostgres, close: s.Close}

	case server.StorageMongo:
		s, err := mongostore.NewStorage(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			log.Warn(ctx, "mongo unavailable, using in-memory storage", "error", err)
			return memoryStorage()
		}
		return storage{users: s, tasks: s, kind: server.StorageMongo, close: func() {
			_ = s.Close(context.Background())
		}}
	}

	log.Info(ctx, "using in-memory storage")
	return memoryStorage()
}
