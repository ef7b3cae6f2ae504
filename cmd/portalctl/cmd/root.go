package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/admissions-portal/internal/config"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg     config.Config
	apiURL  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Admissions portal CLI",
	Long: `portalctl signs in to the admissions portal backend, shows the menu of the
signed-in role and follows grade extraction tasks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewFigure("portalctl", "cybermedium", true).Print()
		fmt.Println()
		_ = cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.New()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.GetAPIBaseURL(), "Backend API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and polls")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(taskCmd)
}

// newStore opens the credentials file, sealed with CREDENTIALS_KEY when set.
func newStore() (*session.FileStore, error) {
	key, err := session.KeyFromPassphrase(cfg.GetCredentialsKey())
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}
	return store, nil
}

func newClient(store session.TokenStore) (*portalapi.Client, error) {
	client, err := portalapi.NewClient(apiURL, session.TokenSource(store), portalapi.WithTimeout(cfg.GetAPITimeout()))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// newProvider wires a session provider over the credentials file.
func newProvider() (*session.Provider, *portalapi.Client, session.TokenStore, error) {
	store, err := newStore()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := newClient(store)
	if err != nil {
		return nil, nil, nil, err
	}
	return session.NewProvider(store, client), client, store, nil
}
