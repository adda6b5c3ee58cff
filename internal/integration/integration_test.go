package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"brainchild-quiz-service/internal/app"
	"brainchild-quiz-service/internal/domain"
	"brainchild-quiz-service/internal/infra/postgres"
	pgmigrations "brainchild-quiz-service/internal/infra/postgres/migrations"
	infraredis "brainchild-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

func TestPlaySessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)
	store := postgres.NewStore(db)
	if err := store.UpsertQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, postgres.NewQuizLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewPlayService(quizRepo, sessions, store)

	session, err := service.Start(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(session.Questions) != 2 || session.Questions[0].QuestionID != "q1" {
		t.Fatalf("expected authored order from postgres, got %+v", session.Questions)
	}

	// Only one of several concurrent submissions for the same index may land.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Submit(ctx, "u1", "quiz-1", 0, session.Questions[0].CorrectLetter())
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrStaleQuestionIndex) {
				t.Errorf("submit: %v", err)
			}
		}()
	}
	wg.Wait()
	if accepted != 1 {
		t.Fatalf("expected one accepted submission, got %d", accepted)
	}

	grade, err := service.Submit(ctx, "u1", "quiz-1", 1, "Z")
	if err != nil {
		t.Fatalf("submit last: %v", err)
	}
	if grade.IsCorrect || !grade.IsLastQuestion {
		t.Fatalf("unexpected grade: %+v", grade)
	}

	result, err := service.Finish(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.ID == 0 || result.Score != 1 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var stored int
	if err := db.NewSelect().Table("quiz_results").ColumnExpr("score").Where("id = ?", result.ID).Scan(ctx, &stored); err != nil {
		t.Fatalf("read result row: %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected stored score 1, got %d", stored)
	}
	saved, err := service.Result(ctx, "u1", result.ID)
	if err != nil || saved.Score != 1 || saved.QuizID != "quiz-1" {
		t.Fatalf("read back result: %+v (%v)", saved, err)
	}
	if _, err := service.Result(ctx, "u2", result.ID); !errors.Is(err, domain.ErrNotResultOwner) {
		t.Fatalf("expected other player to be refused, got %v", err)
	}
	if _, err := service.Current(ctx, "u1", "quiz-1"); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected session removed after finish, got %v", err)
	}
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:     "quiz-1",
		Title:  "Arithmetic",
		Status: domain.QuizActive,
		Public: true,
		Questions: []domain.QuestionDefinition{
			{ID: "q1", Text: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}, AuthoredOrder: 1},
			{ID: "q2", Text: "What is 3 x 3?", CorrectAnswer: "9", IncorrectAnswers: []string{"6", "12"}, AuthoredOrder: 2},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
