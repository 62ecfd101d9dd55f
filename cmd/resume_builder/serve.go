package main

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	servePort       int
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the editor, rendering, export and analysis endpoints.

Settings come from the environment (PORT, DATABASE_URL, GEMINI_API_KEY, CORS_ALLOWED_ORIGINS,
SESSION_TTL_MINUTES, RESUME_TEMPLATE), optionally overlaid by a JSON file given with --config.
Flags override both. Without DATABASE_URL persistence is disabled; without GEMINI_API_KEY
analysis is disabled.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig layers flags over the config file over the environment over defaults.
func loadServeConfig(configPath string, port int, verbose bool) (config.Config, error) {
	envCfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	merged := envCfg
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		merged = fileCfg.MergeWithDefaults(envCfg)
		merged.Verbose = fileCfg.Verbose || envCfg.Verbose
	}
	merged = merged.MergeWithDefaults(config.Defaults())

	if port != 0 {
		merged.Port = port
	}
	if verbose {
		merged.Verbose = true
	}

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(serveConfigPath, servePort, serveVerbose)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		DatabaseURL:    cfg.DatabaseURL,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		SessionTTL:     cfg.SessionTTL(),
		Template:       cfg.Template,
		ChromePath:     cfg.ChromePath,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
