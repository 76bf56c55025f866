package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/auth"
	"github.com/toeicpractice/toeic/internal/config"
	"github.com/toeicpractice/toeic/internal/logging"
	"github.com/toeicpractice/toeic/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "toeic",
	Short: "Terminal TOEIC practice",
	Long:  "toeic: browse TOEIC practice questions, take tests and track results from the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TOEIC_DB env var)")
	rootCmd.PersistentFlags().String("api", "", "Practice API base URL (overrides TOEIC_API_URL env var)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.APIBaseURL = u
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, or the default XDG
// path when none is set.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// env is everything a command needs to talk to the store and the API.
type env struct {
	cfg      config.Config
	log      *zap.Logger
	store    *store.Store
	sessions *auth.Sessions
	api      api.Service
}

// openEnv builds the shared dependencies. Callers must call close.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sessions := auth.NewSessions(st.SettingsRepo(), log)
	client := api.NewClient(api.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout}, sessions)

	log.Debug("environment ready", zap.String("db", dbPath), zap.String("api", cfg.APIBaseURL))
	return &env{
		cfg:      cfg,
		log:      log,
		store:    st,
		sessions: sessions,
		api:      api.WithLogging(client, st.RequestRepo(), log),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
	e.store.Close()
}
