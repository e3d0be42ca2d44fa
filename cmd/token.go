package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/auth/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ja := jwt.New(cfg.HTTP.JWTSecret)
	if ja == nil {
		return errors.New("http.jwt_secret is not set, the api is unauthenticated")
	}
	token, err := jwt.NewToken(ja, tokenTTL, tokenSubject)
	if err != nil {
		return fmt.Errorf("can't create token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
