package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/internal/repository/postgres"
	"github.com/CalumRakk/resume-project/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userPassword string
	userAdmin    bool

	usersCmd = &cobra.Command{
		Use:   "users",
		Short: "Manage API users",
	}

	usersCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an active user",
		Long: `
Creates an active user directly in the database. Use --admin to grant the
admin role, which is required to manage templates and read security events.

Usage:
  $ resumectl users create --email ops@example.com --password 'S3cret!pass' --admin
`,
		Args: cobra.NoArgs,
		RunE: runUsersCreate,
	}

	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := usecase.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
)

func init() {
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address of the new user")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "Initial password (8 to 72 characters)")
	usersCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the admin role")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersCreateCmd)
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", email)
	}
	if n := len(password); n < 8 || n > 72 {
		return errors.New("password must be between 8 and 72 characters")
	}
	return nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	if err := validateCredentials(strings.TrimSpace(userEmail), userPassword); err != nil {
		return err
	}

	role := domain.RoleUser
	if userAdmin {
		role = domain.RoleAdmin
	}
	user, err := usecase.NewUser(userEmail, userPassword, role)
	if err != nil {
		return err
	}

	_, pool, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewUserRepository(pool).Create(cmd.Context(), user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}
