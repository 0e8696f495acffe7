package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizapp-service/internal/app"
	"quizapp-service/internal/domain"
	pgstore "quizapp-service/internal/infra/postgres"
	rediscache "quizapp-service/internal/infra/redis"
	pgmigrations "quizapp-service/internal/infra/postgres/migrations"
)

func TestValidateAndSaveEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgstore.NewQuestionLoader(pool)
	questions := rediscache.NewQuestionCache(redisClient, loader, 5*time.Minute)
	attempts := pgstore.NewAttemptStore(db)
	service := app.NewValidationService(questions, attempts)

	result, err := service.ValidateAndSave(ctx, domain.Submission{
		QuizID: 1,
		UserID: 7,
		Answers: map[int64]string{
			1: "Paris",
			2: "5",
		},
	})
	if err != nil {
		t.Fatalf("validate and save: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 2 {
		t.Fatalf("expected score 1/2, got %d/%d", result.Score, result.TotalQuestions)
	}
	if len(result.Feedback) != 2 {
		t.Fatalf("expected feedback for 2 questions, got %d", len(result.Feedback))
	}

	first, err := attempts.Find(ctx, 7, 1)
	if err != nil {
		t.Fatalf("find attempt: %v", err)
	}
	if first.Score != 1 {
		t.Fatalf("expected stored score 1, got %d", first.Score)
	}

	// A resubmission updates the same record instead of inserting a new one.
	result, err = service.ValidateAndSave(ctx, domain.Submission{
		QuizID: 1,
		UserID: 7,
		Answers: map[int64]string{
			1: "Paris",
			2: "4",
		},
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if result.Score != 2 {
		t.Fatalf("expected perfect score on resubmit, got %d", result.Score)
	}

	all, err := attempts.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected single record after resubmit, got %d", len(all))
	}
	if all[0].Score != 2 {
		t.Fatalf("expected updated score 2, got %d", all[0].Score)
	}
}

func TestCatalogOverviewEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openBun(t, pgURL)
	defer db.Close()
	migrateAndSeed(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := pgstore.NewCatalog(pool)
	attempts := pgstore.NewAttemptStore(db)
	if _, err := attempts.Upsert(ctx, 7, 1, 2); err != nil {
		t.Fatalf("seed attempt: %v", err)
	}

	overview, err := app.NewCatalogService(catalog, attempts).Overview(ctx, 7)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Played) != 1 || overview.Played[0].Quiz.ID != 1 {
		t.Fatalf("expected quiz 1 in played bucket, got %+v", overview.Played)
	}
	for _, q := range append(append(overview.Active, overview.Upcoming...), overview.Expired...) {
		if q.ID == 1 {
			t.Fatalf("played quiz leaked into a status bucket")
		}
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO quizzes (quiz_id, title, description, start_date, end_date)
VALUES (1, 'World Capitals', 'Capital cities', CURRENT_DATE - 7, CURRENT_DATE + 7)
ON CONFLICT (quiz_id) DO NOTHING`); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
INSERT INTO questions (question_id, quiz_id, text, answer, incorrect_answers)
VALUES
  (1, 1, 'What is the capital of France?', 'Paris', '["London","Berlin","Madrid"]'::jsonb),
  (2, 1, 'What is 2 + 2?', '4', '["3","5","22"]'::jsonb)
ON CONFLICT (question_id) DO NOTHING`); err != nil {
		t.Fatalf("insert questions: %v", err)
	}
}

func openBun(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
