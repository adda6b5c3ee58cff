package cli

import (
	"context"
	"fmt"
	"log"

	"brainchild-quiz-service/internal/config"
	"brainchild-quiz-service/internal/domain"
	"brainchild-quiz-service/internal/infra/postgres"
	"brainchild-quiz-service/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

type quizWriter interface {
	UpsertQuiz(ctx context.Context, quiz domain.Quiz) error
}

// NewSeedCmd writes fixture quizzes into the configured database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load YAML quiz fixtures into Postgres or SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Quiz.Fixtures
			}
			return runSeed(cmd.Context(), cfg, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "fixture file (default quiz.fixtures)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, file string) error {
	quizzes, err := fixtureQuizzes(file)
	if err != nil {
		return err
	}

	var writer quizWriter
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()
		writer = postgres.NewStore(db)
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		writer = store
	default:
		return fmt.Errorf("seed needs postgres.url or sqlite.path")
	}

	for _, quiz := range quizzes {
		if err := writer.UpsertQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("seed quiz %s: %w", quiz.ID, err)
		}
		log.Printf("seeded quiz %s (%d questions)", quiz.ID, len(quiz.Questions))
	}
	return nil
}
