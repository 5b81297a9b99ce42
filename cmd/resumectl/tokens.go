package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/CalumRakk/resume-project/internal/repository/postgres"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/redis"

	"github.com/spf13/cobra"
)

var (
	revokeJTI     string
	revokeSubject string
	revokeExpires string

	tokensCmd = &cobra.Command{
		Use:   "tokens",
		Short: "Manage refresh token revocations",
	}

	tokensRevokeCmd = &cobra.Command{
		Use:   "revoke",
		Short: "Blacklist a refresh token by its jti",
		Long: `
Writes the token id to the configured blacklist backend (BLACKLIST_BACKEND).
The entry is kept until --expires, which should be the token's own expiry.
The memory backend lives inside the server process and cannot be reached here.

Usage:
  $ resumectl tokens revoke --jti 6f1c... --expires 2026-01-02T15:04:05Z
`,
		Args: cobra.NoArgs,
		RunE: runTokensRevoke,
	}
)

func init() {
	tokensRevokeCmd.Flags().StringVar(&revokeJTI, "jti", "", "Token id (jti claim)")
	tokensRevokeCmd.Flags().StringVar(&revokeSubject, "subject", "", "Owner of the token, for the audit trail")
	tokensRevokeCmd.Flags().StringVar(&revokeExpires, "expires", "", "Token expiry (RFC3339); defaults to now plus the refresh TTL")
	_ = tokensRevokeCmd.MarkFlagRequired("jti")

	tokensCmd.AddCommand(tokensRevokeCmd)
}

func runTokensRevoke(cmd *cobra.Command, args []string) error {
	cfg, pool, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	expiresAt := time.Now().Add(cfg.RefreshTTL())
	if revokeExpires != "" {
		if expiresAt, err = time.Parse(time.RFC3339, revokeExpires); err != nil {
			return fmt.Errorf("--expires: %w", err)
		}
	}
	if !expiresAt.After(time.Now()) {
		fmt.Fprintln(cmd.OutOrStdout(), "Token already expired, nothing to revoke")
		return nil
	}

	var bl auth.Blacklist
	switch cfg.BlacklistBackend {
	case "postgres":
		bl = postgres.NewTokenBlacklistRepository(pool)
	case "redis":
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			return err
		}
		defer redis.Close()
		bl = auth.NewRedisBlacklist(redis.Client())
	default:
		return errors.New("the memory blacklist cannot be written from outside the server")
	}

	if err := bl.Add(cmd.Context(), revokeJTI, revokeSubject, expiresAt); err != nil {
		return fmt.Errorf("revoke %s: %w", revokeJTI, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s until %s\n", revokeJTI, expiresAt.UTC().Format(time.RFC3339))
	return nil
}
