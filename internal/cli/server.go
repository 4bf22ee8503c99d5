package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
	pginfra "livequiz-service/internal/infra/postgres"
	redisinfra "livequiz-service/internal/infra/redis"
	transport "livequiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores bundles the backend implementations picked from config. Postgres is
// preferred for the ledger when configured (durable), then Redis, then the
// in-memory backend for demos and tests.
type stores struct {
	ledger  app.AnswerLedger
	ranks   app.RankSequencer
	scores  app.ScoreAccumulator
	players app.ParticipantDirectory
	quizzes app.QuizRepository
	close   func()
}

func buildStores(ctx context.Context, cfg config.Config) (*stores, error) {
	var (
		pool        *pgxpool.Pool
		redisClient *redis.Client
		err         error
	)
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pginfra.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	s := &stores{}
	if redisClient != nil {
		s.quizzes = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		s.quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	switch {
	case pool != nil:
		s.ledger = pginfra.NewAnswerLedger(pool)
		s.ranks = pginfra.NewRankSequencer(pool)
		s.scores = pginfra.NewScoreAccumulator(pool)
		s.players = pginfra.NewParticipantDirectory(pool)
	case redisClient != nil:
		retention := config.TTLDuration(cfg.Redis.Retention, 0)
		s.ledger = redisinfra.NewAnswerLedger(redisClient, retention)
		s.ranks = redisinfra.NewRankSequencer(redisClient)
		s.scores = redisinfra.NewScoreAccumulator(redisClient)
		s.players = redisinfra.NewParticipantDirectory(redisClient)
	default:
		s.ledger = memory.NewAnswerLedger()
		s.ranks = memory.NewRankSequencer()
		s.scores = memory.NewScoreAccumulator()
		s.players = memory.NewParticipantDirectory()
	}

	s.close = func() {
		if pool != nil {
			pool.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
	return s, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	s, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	bus := app.NewBroadcaster()
	phases := app.NewPhaseController(s.quizzes, bus)
	service := app.NewSubmissionService(s.quizzes, phases, s.ledger, s.ranks, s.scores, s.players, bus)

	handler := transport.NewHandler(service, phases)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	handler.Register(mux, wsHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting livequiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides minimal demo content for running without Postgres.
func sampleQuizzes() map[string]domain.QuizContent {
	return map[string]domain.QuizContent{
		"quiz-1": {
			ID:   "quiz-1",
			Name: "Demo quiz",
			Questions: []domain.Question{
				{
					ID:            "q1",
					QuizID:        "quiz-1",
					Text:          "What is 2 + 2?",
					Options:       []string{"3", "4", "5"},
					CorrectOption: 1,
					OrderIndex:    0,
				},
				{
					ID:            "q2",
					QuizID:        "quiz-1",
					Text:          "Which planet is closest to the sun?",
					Options:       []string{"Venus", "Earth", "Mercury"},
					CorrectOption: 2,
					OrderIndex:    1,
				},
			},
		},
	}
}
