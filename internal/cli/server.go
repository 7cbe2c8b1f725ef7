package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-exam-service/internal/app"
	"quiz-exam-service/internal/config"
	"quiz-exam-service/internal/domain"
	"quiz-exam-service/internal/infra/memory"
	pgstore "quiz-exam-service/internal/infra/postgres"
	redisstore "quiz-exam-service/internal/infra/redis"
	transport "quiz-exam-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam service",
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
	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)

	var (
		quizzes     app.QuizStore
		results     app.ResultStore
		enrollments app.EnrollmentProvider
		loader      interface {
			LoadQuestionBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
		}
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		store := pgstore.NewQuizStore(pool)
		quizzes = store
		loader = store
		results = pgstore.NewResultStore(db)
		enrollments = pgstore.NewEnrollmentProvider(db)
	} else {
		// Demo mode: seeded in-memory class, no external dependencies.
		store := memory.NewQuizStore(sampleQuizzes()...)
		quizzes = store
		loader = store
		results = memory.NewResultStore()
		enrollments = memory.NewEnrollmentProvider(store, sampleEnrollments()...)
		log.Println("postgres not configured, running with in-memory demo data")
	}

	var questions app.QuestionSource
	if redisClient != nil {
		questions = redisstore.NewQuestionCache(redisClient, loader, questionTTL)
	} else {
		questions = memory.NewQuestionCache(loader, questionTTL)
	}

	hub := transport.NewEventHub()
	service := app.NewExamService(quizzes, questions, results, enrollments, hub)
	handler := transport.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", hub.ServeWS)
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting exam service on :%s", finalPort)
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

// sampleQuizzes seeds demo mode with one scheduled exam and one
// practice quiz in the same class.
func sampleQuizzes() []domain.Quiz {
	questions := []domain.Question{
		{
			Prompt: "What is 2 + 2?",
			Options: []domain.Option{
				{Label: "A", Text: "3"},
				{Label: "B", Text: "4"},
				{Label: "C", Text: "5"},
				{Label: "D", Text: "22"},
			},
			CorrectAnswer:      "B",
			CorrectExplanation: "2 + 2 = 4.",
			WrongExplanations: map[string]string{
				"D": "Digits are added, not concatenated.",
			},
		},
		{
			Prompt: "Which planet is closest to the sun?",
			Options: []domain.Option{
				{Label: "A", Text: "Venus"},
				{Label: "B", Text: "Mars"},
				{Label: "C", Text: "Mercury"},
				{Label: "D", Text: "Earth"},
			},
			CorrectAnswer:      "C",
			CorrectExplanation: "Mercury orbits closest to the sun.",
		},
	}
	now := time.Now()
	return []domain.Quiz{
		{
			ID:                  "quiz-1",
			Title:               "Midterm exam",
			OwnerID:             "teacher-1",
			ClassID:             "class-1",
			Questions:           questions,
			IsExamMode:          true,
			ExamDurationMinutes: 15,
			ExamStatus:          domain.ExamStatusScheduled,
			IsActive:            true,
			CreatedAt:           now,
		},
		{
			ID:              "quiz-2",
			Title:           "Practice set",
			OwnerID:         "teacher-1",
			ClassID:         "class-1",
			Questions:       questions,
			DurationMinutes: 10,
			IsActive:        true,
			CreatedAt:       now,
		},
	}
}

func sampleEnrollments() []domain.ClassEnrollment {
	return []domain.ClassEnrollment{
		{ClassID: "class-1", StudentID: "student-1", IsActive: true},
		{ClassID: "class-1", StudentID: "student-2", IsActive: true},
	}
}
