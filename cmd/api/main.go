package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/adapters/postgres"
	"agora/app"
	"agora/domain/challenge"
	"agora/domain/debate"
	"agora/internal/api"
	"agora/internal/config"
	"agora/internal/migration"
	"agora/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	debateRepo := postgres.NewDebateRepository(db)
	stageRepo := postgres.NewStageRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	argumentRepo := postgres.NewArgumentRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	challengeRepo := postgres.NewChallengeRepository(db)

	// Services
	clock := ports.RealClock()
	policy := debate.Policy{
		MinArgumentChars:          cfg.Arena.MinArgumentChars,
		MaxArgumentChars:          cfg.Arena.MaxArgumentChars,
		MaxArgumentsPerSide:       cfg.Arena.MaxArgumentsPerSide,
		AllowVotesAfterCompletion: cfg.Arena.AllowVotesAfterCompletion,
		AllowVoteChanges:          cfg.Arena.AllowVoteChanges,
	}
	engine := challenge.NewEngine(cfg.Arena.ChallengeTTL, challenge.NewLeet(time.Now().UnixNano()))

	submissions := app.NewSubmissionService(
		debateRepo, stageRepo, participantRepo, argumentRepo, voteRepo, challengeRepo,
		engine, clock, policy,
	)
	submissions.GateVotes(cfg.Arena.GateVotes)

	debates := app.NewDebateService(
		debateRepo, stageRepo, participantRepo, argumentRepo, voteRepo,
		clock, cfg.Arena.StrictWinnerValidation,
	)

	server := api.NewServer(cfg, debates, submissions)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting arena API on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
