package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"brainchild-quiz-service/internal/app"
	"brainchild-quiz-service/internal/config"
	"brainchild-quiz-service/internal/domain"
	"brainchild-quiz-service/internal/fixtures"
	"brainchild-quiz-service/internal/infra/memory"
	"brainchild-quiz-service/internal/infra/postgres"
	redisinfra "brainchild-quiz-service/internal/infra/redis"
	"brainchild-quiz-service/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backends are the collaborators chosen from config. Redis holds sessions and
// the quiz cache when configured; quiz content and results come from
// Postgres, then SQLite, then in-memory fixtures.
type backends struct {
	quizzes  app.QuizRepository
	sessions app.SessionStore
	results  app.ResultRepository

	// sweep is set for the in-memory session store only.
	sweep   func() int
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	var loader memory.QuizLoader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })
		loader = postgres.NewQuizLoader(pool)
		b.results = postgres.NewStore(db)
		log.Printf("quiz content and results in postgres")
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		loader = store
		b.results = store
		log.Printf("quiz content and results in sqlite at %s", cfg.SQLite.Path)
	default:
		quizzes, err := fixtureQuizzes(cfg.Quiz.Fixtures)
		if err != nil {
			return nil, err
		}
		loader = memory.NewStaticQuizLoader(quizzes...)
		b.results = memory.NewResultStore()
		log.Printf("serving %d fixture quizzes from memory", len(quizzes))
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.quizzes = redisinfra.NewQuizRepository(client, loader, quizTTL)
		b.sessions = redisinfra.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	} else {
		store := memory.NewSessionStore(config.TTLDuration(cfg.Session.TTL, 2*time.Hour))
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
		b.sessions = store
		b.sweep = store.Sweep
	}

	ok = true
	return b, nil
}

func fixtureQuizzes(path string) ([]domain.Quiz, error) {
	if path == "" {
		return sampleQuizzes(), nil
	}
	return fixtures.Load(path)
}

// sampleQuizzes is served when no store or fixture file is configured.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:             "quiz-1",
			Title:          "European capitals",
			Status:         domain.QuizActive,
			Public:         true,
			ShuffleAnswers: true,
			Questions: []domain.QuestionDefinition{
				{ID: "q1", Text: "What is the capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"London", "Rome"}, AuthoredOrder: 1},
				{ID: "q2", Text: "What is the capital of Italy?", CorrectAnswer: "Rome", IncorrectAnswers: []string{"Madrid", "Lisbon", "Vienna"}, AuthoredOrder: 2},
				{ID: "q3", Text: "What is the capital of Norway?", CorrectAnswer: "Oslo", IncorrectAnswers: []string{"Stockholm", "Helsinki"}, AuthoredOrder: 3},
			},
		},
	}
}
