package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentence-practice-service/internal/app"
	"sentence-practice-service/internal/config"
	"sentence-practice-service/internal/domain"
	"sentence-practice-service/internal/infra/assignment"
	"sentence-practice-service/internal/infra/memory"
	pgloader "sentence-practice-service/internal/infra/postgres"
	redisinfra "sentence-practice-service/internal/infra/redis"
	transport "sentence-practice-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	backendTimeout := config.TTLDuration(cfg.Backend.Timeout, 10*time.Second)

	// Question-set source: the assignment backend when configured, then
	// Postgres-hosted content, then the built-in demo set.
	var loader memory.QuestionSetLoader
	var recorder app.Recorder
	switch {
	case cfg.Backend.BaseURL != "":
		client := assignment.NewClient(cfg.Backend.BaseURL, cfg.Backend.PreviewBaseURL, backendTimeout)
		loader = client
		recorder = client
	case pool != nil:
		loader = pgloader.NewAssignmentLoader(pool)
		recorder = logRecorder{}
	default:
		loader = memory.NewStaticLoader(sampleAssignments())
		recorder = logRecorder{}
	}

	setTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var sets app.QuestionSetRepository
	if redisClient != nil {
		sets = redisinfra.NewQuestionSetRepository(redisClient, loader, setTTL)
	} else {
		sets = memory.NewQuestionSetRepository(loader, setTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore()
	}

	maxAttempts := cfg.Recorder.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 4
	}
	initialBackoff := config.TTLDuration(cfg.Recorder.InitialBackoff, 500*time.Millisecond)

	service := app.NewPracticeService(store, sets, recorder, maxAttempts, initialBackoff)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting practice service on :%s", finalPort)
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
	err = server.Shutdown(shutdownCtx)
	service.Shutdown()
	return err
}

// logRecorder stands in for the score-recording backend when none is
// configured; resolutions are logged and otherwise discarded.
type logRecorder struct{}

func (logRecorder) RecordCompletion(_ context.Context, rec domain.CompletionRecord, preview bool) error {
	log.Printf("completion (preview=%v): item=%s score=%d errors=%d timeout=%v",
		preview, rec.ContentItemID, rec.ExpectedScore, rec.ErrorCount, rec.Timeout)
	return nil
}

func (logRecorder) RecordRetry(_ context.Context, contentItemID string, preview bool) error {
	log.Printf("retry (preview=%v): item=%s", preview, contentItemID)
	return nil
}

// sampleAssignments provides a minimal demo set; swap the loader for the
// assignment backend or Postgres in production.
func sampleAssignments() map[string]domain.QuestionSet {
	q := domain.Question{
		ContentItemID:     "demo-1",
		TimeLimitSeconds:  60,
		CorrectSequence:   []string{"the", "quick", "brown", "fox", "jumps"},
		ShuffledPool:      []string{"fox", "jumps", "the", "brown", "quick"},
		Translation:       "a well-known pangram opening",
		AllowAnswerReveal: true,
	}
	q.Normalize()
	return map[string]domain.QuestionSet{
		"assignment-1": {
			AssignmentID:   "assignment-1",
			ScoreCategory:  "practice",
			TotalQuestions: 1,
			Questions:      []domain.Question{q},
		},
	}
}
