package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizapp-service/internal/app"
	"quizapp-service/internal/config"
	"quizapp-service/internal/domain"
	"quizapp-service/internal/infra/memory"
	pgstore "quizapp-service/internal/infra/postgres"
	rediscache "quizapp-service/internal/infra/redis"
	"quizapp-service/internal/logging"
	transport "quizapp-service/internal/transport/http"
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

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := logging.New("quizapp-service")

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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	static := memory.NewStaticStore(sampleQuizzes(), sampleQuestions())

	var catalog app.QuizCatalog = static
	var loader memory.QuestionLoader = static
	var admin app.CatalogAdmin = static
	if pool != nil {
		pgCatalog := pgstore.NewCatalog(pool)
		pgLoader := pgstore.NewQuestionLoader(pool)
		catalog = pgCatalog
		loader = pgLoader
		admin = pgstore.NewAdmin(pgCatalog, pgLoader)
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, cacheTTL)
	var questions app.QuestionSource
	if redisClient != nil {
		questions = rediscache.NewQuestionCache(redisClient, loader, redisTTL)
	} else {
		questions = memory.NewQuestionCache(loader, cacheTTL)
	}

	var attempts app.AttemptStore = memory.NewAttemptStore()
	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		attempts = pgstore.NewAttemptStore(db)
	}

	validation := app.NewValidationService(questions, attempts)

	var grader app.GradingStrategy
	switch cfg.Grading.Mode {
	case "local":
		grader = app.NewLocalGrader(attempts)
	default:
		grader = app.NewRemoteGrader(validation)
	}

	overview := app.NewCatalogService(catalog, attempts)
	apiHandler := transport.NewAPIHandler(catalog, questions, attempts, validation, overview, log)
	apiHandler.EnableAdmin(admin)
	wsHandler := transport.NewWSHandler(func(userID, quizID int64) *app.Session {
		return app.NewSession(userID, quizID, questions, attempts, grader)
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	apiHandler.Register(mux)
	mux.HandleFunc("/ws/quiz", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds the in-memory catalog when no database is configured.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:          1,
			Title:       "World Capitals",
			Description: "Capital cities around the globe",
			StartDate:   time.Now().AddDate(0, 0, -7),
			EndDate:     time.Now().AddDate(0, 0, 7),
		},
		{
			ID:          2,
			Title:       "Basic Arithmetic",
			Description: "Quick mental math",
			StartDate:   time.Now().AddDate(0, 0, 14),
			EndDate:     time.Now().AddDate(0, 0, 21),
		},
	}
}

func sampleQuestions() map[int64][]domain.Question {
	return map[int64][]domain.Question{
		1: {
			{
				ID:               1,
				Text:             "What is the capital of France?",
				Answer:           "Paris",
				IncorrectAnswers: []string{"London", "Berlin", "Madrid"},
			},
			{
				ID:               2,
				Text:             "What is the capital of Japan?",
				Answer:           "Tokyo",
				IncorrectAnswers: []string{"Osaka", "Kyoto", "Seoul"},
			},
		},
		2: {
			{
				ID:               3,
				Text:             "What is 2 + 2?",
				Answer:           "4",
				IncorrectAnswers: []string{"3", "5", "22"},
			},
		},
	}
}
