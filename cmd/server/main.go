package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/bitcoindistrict/bookclub-api/docs"
	"github.com/bitcoindistrict/bookclub-api/internal/config"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
	api "github.com/bitcoindistrict/bookclub-api/internal/http"
	"github.com/bitcoindistrict/bookclub-api/internal/metrics"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/database"
	jwtpkg "github.com/bitcoindistrict/bookclub-api/internal/platform/jwt"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/storage"
	"github.com/bitcoindistrict/bookclub-api/internal/repository/postgres"
	"github.com/bitcoindistrict/bookclub-api/internal/worker"
)

// @title           Bitcoin District Book Club API
// @version         1.0
// @description     Book catalog, polls and one-vote-per-member voting
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	covers, err := storage.NewDiskStore(cfg.CoverDir, cfg.PublicBaseURL+"/covers")
	if err != nil {
		log.Fatalf("cover store error: %v", err)
	}

	bookRepo := postgres.NewBookRepo(db)
	pollRepo := postgres.NewPollRepo(db)
	voteRepo := postgres.NewVoteRepo(db)
	roleRepo := postgres.NewRoleRepo(db)

	bookSvc := book.NewService(bookRepo, covers)
	pollSvc := poll.NewService(pollRepo, covers)
	voteSvc := vote.NewService(voteRepo, covers)
	roleSvc := role.NewService(roleRepo)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer)

	voteCh := make(chan worker.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, logger)

	router := api.NewRouter(bookSvc, pollSvc, voteSvc, roleSvc, jwtMgr, voteCh, db, cfg.CoverDir)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go statsWorker.Run(ctx)

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	logger.Info("server stopped")
}
