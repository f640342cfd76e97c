package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/config"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/events"
	"github.com/spec-kit/bcm-risk-service/internal/observability"
	"github.com/spec-kit/bcm-risk-service/internal/persistence"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	"github.com/spec-kit/bcm-risk-service/internal/seed"
	"github.com/spec-kit/bcm-risk-service/internal/service"
)

// env bundles everything the subcommands share.
type env struct {
	cfg        *config.Config
	logger     *zap.Logger
	pg         *persistence.Postgres
	users      repository.UserRepository
	depts      repository.DepartmentRepository
	risks      repository.RiskRepository
	dispatcher *events.AsyncDispatcher
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, err
		}
	}

	pool := pg.PoolHandle()
	return &env{
		cfg:        cfg,
		logger:     logger,
		pg:         pg,
		users:      repository.NewUserRepository(pool),
		depts:      repository.NewDepartmentRepository(pool),
		risks:      repository.NewRiskRepository(pool),
		dispatcher: events.NewAsyncDispatcher(cfg.Notification.QueueSize, logger),
	}, nil
}

func (e *env) close() {
	e.dispatcher.Close()
	e.pg.Close()
	_ = e.logger.Sync()
}

func (e *env) riskService() *service.RiskService {
	return service.NewRiskService(service.RiskDependencies{
		RiskRepo:       e.risks,
		DepartmentRepo: e.depts,
		UserRepo:       e.users,
		Dispatcher:     e.dispatcher,
		Logger:         e.logger,
	})
}

func (e *env) adminUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := e.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load admin %q: %w", username, err)
	}
	if user.Role != domain.RoleAdmin {
		return nil, errors.New("user " + username + " is not an admin")
	}
	return user, nil
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed initial departments, users and sample risks",
		Long:  "Seeds the initial data set. Safe to run repeatedly: existing records are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			seeder := seed.New(e.depts, e.users, e.risks, e.cfg.Auth.BcryptCost, e.logger)
			result, err := seeder.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("departments created: %d\nusers created: %d\nrisks created: %d\n",
				result.DepartmentsCreated, result.UsersCreated, result.RisksCreated)
			return nil
		},
	}
}

func newLockCmd() *cobra.Command {
	var adminUsername string
	cmd := &cobra.Command{
		Use:   "lock <risk-id>...",
		Short: "Lock one or more risks against department edits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLockCmd(cmd.Context(), adminUsername, args, true)
		},
	}
	cmd.Flags().StringVar(&adminUsername, "admin", "admin", "acting admin username")
	return cmd
}

func newUnlockCmd() *cobra.Command {
	var adminUsername string
	cmd := &cobra.Command{
		Use:   "unlock <risk-id>...",
		Short: "Unlock one or more risks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLockCmd(cmd.Context(), adminUsername, args, false)
		},
	}
	cmd.Flags().StringVar(&adminUsername, "admin", "admin", "acting admin username")
	return cmd
}

func runLockCmd(ctx context.Context, adminUsername string, riskIDs []string, lock bool) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	admin, err := e.adminUser(ctx, adminUsername)
	if err != nil {
		return err
	}
	risks := e.riskService()

	var failed int
	for _, id := range riskIDs {
		var opErr error
		if lock {
			_, opErr = risks.Lock(ctx, admin, id)
		} else {
			_, opErr = risks.Unlock(ctx, admin, id)
		}
		if opErr != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, opErr)
			continue
		}
		action := "locked"
		if !lock {
			action = "unlocked"
		}
		fmt.Printf("%s: %s\n", id, action)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d risks failed", failed, len(riskIDs))
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:           "bcmctl",
		Short:         "Admin CLI for the BCM risk register",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(), newLockCmd(), newUnlockCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
