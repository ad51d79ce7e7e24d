package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/ArielDRighi/tarot/internal/adapters/http"
)

var (
	tokenUserID uint
	tokenAdmin  bool
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		if tokenUserID == 0 {
			return errors.New("--user must be a positive user id")
		}
		tok, err := httpadapter.IssueToken([]byte(cfg.JWTSecret), tokenUserID, tokenAdmin, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user", 0, "user id placed in the sub claim")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant admin rights")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
