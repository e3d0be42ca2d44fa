package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tutorcruncher-dashboard",
		Short: "Service serving tutoring agency analytics from synced TutorCruncher data",
		RunE:  run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the tutorcruncher-dashboard service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Run one full TutorCruncher sync and exit",
		RunE:  runSync,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a dashboard API token signed with http.jwt_secret",
		RunE:  runToken,
	}

	cfgFile string
	version string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Default().Warn("can't load .env", slog.String("err", err.Error()))
		}
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "dashboard", "token subject")
	tokenCmd.Flags().DurationVarP(&tokenTTL, "ttl", "t", 30*24*time.Hour, "token lifetime")
	rootCmd.AddCommand(versionCmd, syncCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("can't start the service", slog.String("err", err.Error()))
		os.Exit(-1)
	}
}
