// Package cmd implements the hubsync command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LiamTF/hubsync/pkg/logging"
)

// tokenEnvVar is the environment variable holding the HubSpot API
// access token when no --token flag is given.
const tokenEnvVar = "HUBSPOT_API_ACCESS_TOKEN"

var (
	tokenFlag   string
	verboseFlag bool
	quietFlag   bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hubsync",
	Short: "HubSpot parent/child company sync",
	Long: `Hubsync keeps the parent/child company hierarchy in HubSpot CRM in
step with an external location registry.

Given a location id it finds every child company tagged with that id,
ensures a parent company exists for it (creating one from the first
child's name, or refreshing the name from the imported-name staging
field), and links each child to the parent with HubSpot's predefined
parent/child associations.

The API access token is read from --token, the HUBSPOT_API_ACCESS_TOKEN
environment variable, or a .env file in the working directory.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	// Signal handling for graceful shutdown; an in-flight request runs
	// to completion or timeout, but nothing new is issued afterward.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "",
		"HubSpot API access token (overrides "+tokenEnvVar+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Verbose output: debug logging plus raw API response echo")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Minimal output")

	rootCmd.SilenceUsage = true
}

// initConfig loads .env files and binds environment variables.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if err := viper.BindEnv(tokenEnvVar); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", tokenEnvVar, err)
	}

	configureLogging()
}

// configureLogging sets up the logging system based on flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	if quietFlag {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	logging.Configure(&logging.Config{
		Level:   level.String(),
		Format:  os.Getenv("LOG_FORMAT"),
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	})
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil && verboseFlag {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}
