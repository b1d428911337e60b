package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itinventory/internal/config"
	"itinventory/internal/core/container"
	"itinventory/internal/core/logger"
	"itinventory/internal/core/routes"
	"itinventory/internal/database"
	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
	"itinventory/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.Store.MigrationsDir
			}
			log := logger.NewLogger(cfg.App.LogLevel)
			defer log.Sync()

			if err := database.RunMigrations(cfg.Store.DatabaseURL, dir, log); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Serve(cmd.Context())
		},
	}
	return cmd
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore a principal's inventory.",
	}
	cmd.AddCommand(newBackupExportCmd(), newBackupRestoreCmd())
	return cmd
}

func newBackupExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the inventory backup of --principal as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			return withSession(cmd, func(c *container.Container, sess *session.Session) error {
				file := c.Backup.Export(sess)
				raw, err := json.MarshalIndent(file, "", "  ")
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
					return err
				}
				if err := os.WriteFile(out, raw, 0o600); err != nil {
					return err
				}
				summary := file.Summary()
				c.Logger.Info("Backup written", zap.String("file", out),
					zap.Int("equipment", summary.Equipment), zap.Int("transactions", summary.Transactions))
				return nil
			})
		},
	}
	cmd.Flags().String("principal", "", "Principal id that owns the inventory")
	cmd.Flags().String("out", "-", "Output file, - for stdout")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the inventory of --principal with a backup file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			yes, _ := cmd.Flags().GetBool("yes")
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			return withSession(cmd, func(c *container.Container, sess *session.Session) error {
				summary, err := c.Backup.Restore(cmd.Context(), sess, raw, yes)
				if err != nil {
					if custom_error.CodeOf(err) == custom_error.CodeConfirmationRequired {
						fmt.Fprintf(cmd.ErrOrStderr(), "The backup holds %d equipment and %d transactions and replaces the current inventory. Re-run with --yes.\n",
							summary.Equipment, summary.Transactions)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d equipment and %d transactions.\n", summary.Equipment, summary.Transactions)
				return nil
			})
		},
	}
	cmd.Flags().String("principal", "", "Principal id that owns the inventory")
	cmd.Flags().String("file", "", "Backup file to restore")
	cmd.Flags().Bool("yes", false, "Confirm replacing the current inventory")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every equipment and transaction of --principal.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return withSession(cmd, func(c *container.Container, sess *session.Session) error {
				return c.Backup.Reset(cmd.Context(), sess, yes)
			})
		},
	}
	cmd.Flags().String("principal", "", "Principal id that owns the inventory")
	cmd.Flags().Bool("yes", false, "Confirm deleting the inventory")
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts.",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a password account.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			roleName, _ := cmd.Flags().GetString("role")
			role, err := roles.Parse(roleName)
			if err != nil {
				return err
			}

			return withContainer(cmd, func(c *container.Container) error {
				user, err := c.Auth.CreateUser(cmd.Context(), email, password, name, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s, %s).\n", user.ID, user.Email, user.Role)
				return nil
			})
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("role", roles.Default().String(), "user, moderator or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func withContainer(cmd *cobra.Command, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.App.LogLevel)
	defer log.Sync()

	c, err := container.NewAppContainer(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())
	return fn(c)
}

// withSession opens the session of --principal the way a sign-in would.
func withSession(cmd *cobra.Command, fn func(c *container.Container, sess *session.Session) error) error {
	principalID, _ := cmd.Flags().GetString("principal")
	if principalID == "" {
		return errors.New("--principal is required")
	}
	return withContainer(cmd, func(c *container.Container) error {
		principal := models.Principal{ID: principalID, DisplayName: "CLI", Role: roles.Admin.String()}
		sess, err := c.Sessions.Open(cmd.Context(), principal)
		if err != nil {
			return fmt.Errorf("load inventory of %s: %w", principalID, err)
		}
		defer c.Sessions.Close(principalID)
		return fn(c, sess)
	})
}

// Serve runs the API until SIGINT or SIGTERM.
func Serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.App.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.NewAppContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              cfg.App.Host,
		Handler:           routes.NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		c.Feed.Run(ctx)
		return nil
	})
	group.Go(func() error {
		log.Info("Starting server", zap.String("addr", server.Addr), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "itinventory",
		Short:        "IT equipment inventory service",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newBackupCmd(), newResetCmd(), newUserCmd())
	return rootCmd
}

func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
