package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/access"
	"github.com/adminpro/storefront-admin/config"
	"github.com/adminpro/storefront-admin/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Storefront admin panel backend",
	Long: `admin serves the JSON API behind the storefront administration panel:
categories, products, image uploads and the stock analytics view.

Settings come from .env, an optional YAML file (--config) and the environment,
e.g. DATABASE_URL, CLOUDINARY_CLOUD_NAME, AUTH_JWT_SECRET.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the categories and products tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var (
	tokenSubject string
	tokenEmail   string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a session token with the configured secret (development only)",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "dev-admin", "token subject")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{access.DefaultAdminRole}, "role claims")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (AUTH_JWT_SECRET) is required")
	}
	auth := access.NewAuthenticator(cfg.Auth.JWTSecret, access.WithIssuer(cfg.Auth.Issuer))
	token, err := auth.Issue(tokenSubject, tokenEmail, tokenRoles, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
