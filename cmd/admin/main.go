package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lkhn/wealth-backend/internal/database"
	"github.com/lkhn/wealth-backend/internal/logging"
	"github.com/lkhn/wealth-backend/internal/services"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

const (
	minPasswordLen = 12
	maxUsernameLen = 50
)

type createOptions struct {
	Username string
	Email    string
	Password string
}

func main() {
	_ = godotenv.Load()
	logging.Init("warn")

	root := &cobra.Command{
		Use:   "admin",
		Short: "Provision admin accounts",
	}
	root.AddCommand(newCreateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCreateCommand() *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account in PostgreSQL",
		Long: `Create an admin account. MFA starts disabled; enroll with
POST /api/admin/mfa/enroll after the first sign-in.

Reads POSTGRES_URI from the environment.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createAdmin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&opts.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&opts.Password, "password", os.Getenv("ADMIN_PASSWORD"), "password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// validate trims opts in place and rejects values the admins table or signin would not accept.
func (opts *createOptions) validate() error {
	opts.Username = strings.TrimSpace(opts.Username)
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Username == "" {
		return errors.New("username is required")
	}
	if len(opts.Username) > maxUsernameLen {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}
	if err := utils.ValidateEmail(opts.Email); err != nil {
		return err
	}
	if len(opts.Password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func createAdmin(cmd *cobra.Command, opts *createOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return errors.New("POSTGRES_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.ConnectPostgres(ctx, uri)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.InitPostgresTables(ctx, db); err != nil {
		return err
	}

	hash, err := utils.HashPassword(opts.Password)
	if err != nil {
		return err
	}

	admin, err := services.NewAdminStore(db).Create(ctx, opts.Username, opts.Email, hash)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Username, admin.ID)
	return nil
}
