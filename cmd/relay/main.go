// File: cmd/relay/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kenerlabs/kener-telegram-relay/internal/config"
	"github.com/kenerlabs/kener-telegram-relay/internal/metrics"
	"github.com/kenerlabs/kener-telegram-relay/internal/models"
	"github.com/kenerlabs/kener-telegram-relay/internal/relay"
	"github.com/kenerlabs/kener-telegram-relay/internal/server"
	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// Application represents the main application
type Application struct {
	config         *config.Config
	metricsManager *metrics.Manager
	relay          *relay.Relay
	server         *server.HTTPServer
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	// Initialize logger
	if err := app.initializeLogger(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize components
	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	utils.GetLogger().WithField("level", logCfg.Level).Info("Logger initialized")
	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	logger := utils.GetLogger()
	logger.Info("Initializing application components")

	if app.config.Server.EnableMetrics {
		app.metricsManager = metrics.NewManager()
	}

	app.relay = relay.NewRelay(
		&relay.RelayConfig{
			DispatchTimeout: app.config.Telegram.RequestTimeout,
			LogLevel:        app.config.Logging.Level,
		},
		&relay.TelegramConfig{
			BotToken:   app.config.Telegram.BotToken,
			ChatID:     app.config.Telegram.ChatID,
			APIBaseURL: app.config.Telegram.APIBaseURL,
			Timeout:    app.config.Telegram.RequestTimeout,
		},
		app.metricsManager,
	)

	serverCfg := &server.ServerConfig{
		Port:          app.config.Server.Port,
		Host:          app.config.Server.Host,
		ReadTimeout:   app.config.Server.ReadTimeout,
		WriteTimeout:  app.config.Server.WriteTimeout,
		EnableMetrics: app.config.Server.EnableMetrics,
		MaxBodyBytes:  app.config.Server.MaxBodyBytes,
		WebhookSecret: app.config.Auth.WebhookSecret,
	}

	var err error
	app.server, err = server.NewHTTPServer(serverCfg, app.relay, app.metricsManager)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("All components initialized successfully")
	return nil
}

// Start starts the application
func (app *Application) Start() error {
	logger := utils.GetLogger()
	logger.WithField("version", AppVersion).Info("Starting Kener Telegram relay")

	if err := app.relay.Start(app.ctx); err != nil {
		return fmt.Errorf("failed to start relay pipeline: %w", err)
	}

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"server_address": fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port),
		"auth_enabled":   app.config.Auth.WebhookSecret != "",
	}).Info("Kener Telegram relay started successfully")

	return nil
}

// Stop stops the application gracefully
func (app *Application) Stop() error {
	logger := utils.GetLogger()
	logger.Info("Stopping Kener Telegram relay")

	app.cancel()

	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			logger.WithField("error", err).Error("Failed to stop HTTP server")
		}
	}

	if app.relay != nil {
		if err := app.relay.Stop(); err != nil {
			logger.WithField("error", err).Error("Failed to stop relay pipeline")
		}
	}

	logger.Info("Kener Telegram relay stopped successfully")
	return nil
}

// CLI Commands

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "kener-telegram-relay",
	Short:   "Kener webhook to Telegram notification relay",
	Long:    `A small relay service that receives Kener monitoring webhook events and forwards formatted alert messages to a Telegram chat.`,
	Version: AppVersion,
	RunE:    runRelay,
}

// runRelay is the main command to run the relay
func runRelay(cmd *cobra.Command, args []string) error {
	// Optional .env preload; real environment variables win.
	godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Set up signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	if err := app.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	<-signalChan
	fmt.Println("\nReceived shutdown signal, stopping application...")

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}

	return nil
}

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	configPath := viper.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Kener Telegram Relay %s\n", AppVersion)
	},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

// validateConfigCmd validates the configuration
var validateConfigCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Environment: %s\n", cfg.App.Environment)
		fmt.Printf("Listen port: %d\n", cfg.Server.Port)
		fmt.Printf("Auth enabled: %t\n", cfg.Auth.WebhookSecret != "")
		fmt.Printf("Telegram chat: %s\n", cfg.Telegram.ChatID)

		return nil
	},
}

// testCmd sends a synthetic alert through the full pipeline
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test alert to verify Telegram credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		rly := relay.NewRelay(
			&relay.RelayConfig{
				DispatchTimeout: cfg.Telegram.RequestTimeout,
				LogLevel:        cfg.Logging.Level,
			},
			&relay.TelegramConfig{
				BotToken:   cfg.Telegram.BotToken,
				ChatID:     cfg.Telegram.ChatID,
				APIBaseURL: cfg.Telegram.APIBaseURL,
				Timeout:    cfg.Telegram.RequestTimeout,
			},
			nil,
		)

		if err := rly.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start relay pipeline: %w", err)
		}
		defer rly.Stop()

		fmt.Printf("Sending test alert to chat %s...\n", cfg.Telegram.ChatID)

		event := models.InboundEvent{
			"id":          "relay-test",
			"alert_name":  "Relay connectivity test",
			"status":      "TRIGGERED",
			"severity":    "warning",
			"description": "Manual test alert from kener-telegram-relay",
		}

		if err := rly.Process(cmd.Context(), event); err != nil {
			return fmt.Errorf("test dispatch failed: %w", err)
		}

		fmt.Println("Test alert delivered ✓")
		return nil
	},
}

// init initializes the CLI commands
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testCmd)
	configCmd.AddCommand(validateConfigCmd)
}

// main is the entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
