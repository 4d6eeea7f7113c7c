package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/expertpanel/draw-service/internal/config"
	"github.com/expertpanel/draw-service/internal/repository/postgres"
	"github.com/expertpanel/draw-service/internal/service"
	myhttp "github.com/expertpanel/draw-service/internal/transport/http"

	"github.com/expertpanel/draw-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting draw-service", slog.String("env", cfg.Env))

	errChan := make(chan error, 1)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %v", err)
	}
	defer func() {
		err = db.DB().Close()
		if err != nil {
			errChan <- fmt.Errorf("db close failed: %v", err)
		}
	}()

	drawCmdRepo := postgres.NewDrawCommandRepository(log)
	drawQueryRepo := postgres.NewDrawQueryRepository(db.DB(), log)
	ruleRepo := postgres.NewRuleRepository(log)
	expertRepo := postgres.NewExpertDirectoryRepository(log)
	refRepo := postgres.NewReferenceRepository(log)

	resolver := service.NewCandidateResolver(log, expertRepo, refRepo)
	picker := service.NewSelector(rand.New(rand.NewSource(time.Now().UnixNano())))

	drawService := service.NewDrawService(db.DB(), log, drawCmdRepo, drawQueryRepo, ruleRepo, resolver, picker)
	resultService := service.NewResultService(log, drawQueryRepo)

	srv := myhttp.NewServer(log, drawService, resultService)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %v", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}
