// Command reviewctl runs operator tasks against the review database:
// schema migrations, role grants and secret generation.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"re-view.backend/internal/config"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/internal/infrastructure/database"
	"re-view.backend/internal/infrastructure/migrations"
	"re-view.backend/internal/infrastructure/repositories"
	"re-view.backend/pkg/crypto"
)

type cliDeps struct {
	loadEnv func() error
	loadCfg func(ctx context.Context) (*config.Config, error)
	openDB  func(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error)
	openSQL func(dsn string) (*sql.DB, error)
	random  func(b []byte) (int, error)
}

func defaultDeps() cliDeps {
	return cliDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		openDB:  database.Open,
		openSQL: migrations.Open,
		random:  rand.Read,
	}
}

func main() {
	if err := newRootCommand(defaultDeps()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Operator tooling for the review backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand(deps))
	cmd.AddCommand(newUsersCommand(deps))
	cmd.AddCommand(newHashCommand())
	cmd.AddCommand(newKeygenCommand(deps))
	return cmd
}

func (d cliDeps) config(ctx context.Context) (*config.Config, error) {
	_ = d.loadEnv() // .env is optional
	cfg, err := d.loadCfg(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newMigrateCommand(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	steps := []struct {
		use   string
		short string
		run   func(ctx context.Context, db *sql.DB, out io.Writer) error
	}{
		{"up", "Apply every pending migration", func(ctx context.Context, db *sql.DB, out io.Writer) error {
			if err := migrations.Up(ctx, db); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "migrations applied")
			return nil
		}},
		{"down", "Roll back the latest migration", func(ctx context.Context, db *sql.DB, out io.Writer) error {
			if err := migrations.Down(ctx, db); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "latest migration rolled back")
			return nil
		}},
		{"status", "Print the state of every migration", func(ctx context.Context, db *sql.DB, _ io.Writer) error {
			return migrations.Status(ctx, db)
		}},
		{"version", "Print the current schema version", func(ctx context.Context, db *sql.DB, out io.Writer) error {
			v, err := migrations.Version(ctx, db)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "version=%d\n", v)
			return nil
		}},
	}

	for _, s := range steps {
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := deps.config(commandContext(cmd))
				if err != nil {
					return err
				}
				if cfg.Database.IsSQLite() {
					return errors.New("goose migrations target postgres; the sqlite driver applies the schema when the server opens it")
				}
				db, err := deps.openSQL(cfg.Database.URL())
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				defer db.Close()
				return s.run(commandContext(cmd), db, cmd.OutOrStdout())
			},
		})
	}
	return cmd
}

func newUsersCommand(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newRoleCommand(deps, "grant-role", "Grant a role to a user", true))
	cmd.AddCommand(newRoleCommand(deps, "revoke-role", "Revoke a role from a user", false))
	return cmd
}

func newRoleCommand(deps cliDeps, use, short string, grant bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id|email> <role>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := entities.Role(strings.ToUpper(args[1]))
			if !role.IsValid() {
				return fmt.Errorf("unknown role %q", args[1])
			}

			ctx := commandContext(cmd)
			cfg, err := deps.config(ctx)
			if err != nil {
				return err
			}
			db, err := deps.openDB(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close(db)

			users := repositories.NewUserRepository(db)
			roles := repositories.NewRoleRepository(db)

			user, err := lookupUser(ctx, users, args[0])
			if err != nil {
				return err
			}

			if grant {
				err = roles.Grant(ctx, user.ID, role)
			} else {
				err = roles.Revoke(ctx, user.ID, role)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}

			current, err := roles.ListByUser(ctx, user.ID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\nemail=%s\nroles=%s\n", user.ID, user.Email, joinRoles(current))
			return nil
		},
	}
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

func lookupUser(ctx context.Context, users userLookup, ref string) (*entities.User, error) {
	var (
		user *entities.User
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		user, err = users.GetByID(ctx, id)
	} else {
		user, err = users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(ref)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", ref, err)
	}
	return user, nil
}

func joinRoles(roles []entities.Role) string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return strings.Join(out, ",")
}

func newHashCommand() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crypto.SetCost(cost)
			hash, err := crypto.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", crypto.DefaultCost, "bcrypt cost")
	return cmd
}

func newKeygenCommand(deps cliDeps) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a hex secret for SESSION_ENCRYPTION_KEY or JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size <= 0 {
				return fmt.Errorf("invalid size: %d", size)
			}
			buf := make([]byte, size)
			if _, err := deps.random(buf); err != nil {
				return fmt.Errorf("failed to read random bytes: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "secret length in bytes")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
