package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pegasusedge/cmd/pegasus/ui"
	"pegasusedge/internal/access"
	"pegasusedge/internal/audio"
	"pegasusedge/internal/config"
	"pegasusedge/internal/gemini"
	"pegasusedge/internal/logging"
	"pegasusedge/internal/payments"
	"pegasusedge/internal/studio"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Global flags
	verbose bool
	model   string

	// Logger for non-interactive commands
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pegasus",
	Short: "Pegasus Edge - AI toolkit for content creators",
	Long: `Pegasus Edge is a terminal studio for content creators.

The Creator's Edge Studio walks a channel idea through five steps -
vision, visual signature, content blueprint, audio alchemy and the
final creator's pack - backed by Gemini generation and a local
AudioCraft audio backend.

Run without arguments to start the interactive studio.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := config.DataDir()
		if err != nil {
			return err
		}
		cfg, err = config.Load(dataDir)
		if err != nil {
			return err
		}
		if model != "" {
			cfg.Model = model
		}

		if err := logging.Initialize(dataDir, logging.Settings{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return err
		}

		// Interactive mode has its own UI; no console logger.
		if cmd.Use == "pegasus" && cmd.CalledAs() == "pegasus" {
			return nil
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// textCmd runs a one-shot text generation
var textCmd = &cobra.Command{
	Use:   "text [prompt]",
	Short: "Generate text from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HasAPIKey() {
			return missingKeyErr()
		}
		prompt := strings.Join(args, " ")
		logger.Debug("generating text", zap.String("model", cfg.Model), zap.Int("prompt_len", len(prompt)))

		client := newGeminiClient()
		start := time.Now()
		text, err := client.GenerateText(cmd.Context(), "", prompt)
		if err != nil {
			return err
		}
		logger.Info("text generated", zap.Duration("elapsed", time.Since(start)), zap.Int("len", len(text)))
		fmt.Println(text)
		return nil
	},
}

// imageCmd generates an image and writes it next to the data dir
var imageCmd = &cobra.Command{
	Use:   "image [prompt]",
	Short: "Generate an image from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HasAPIKey() {
			return missingKeyErr()
		}
		prompt := strings.Join(args, " ")

		gen, err := gemini.NewImageGenerator(cmd.Context(), cfg.APIKey, cfg.ImageModel)
		if err != nil {
			return err
		}

		start := time.Now()
		dataURI, err := gen.Generate(cmd.Context(), prompt)
		if err != nil {
			return err
		}

		path, err := saveDataURI(cfg.DataDir, dataURI)
		if err != nil {
			return err
		}
		logger.Info("image generated", zap.Duration("elapsed", time.Since(start)), zap.String("path", path))
		fmt.Printf("Image saved to %s\n", path)
		return nil
	},
}

// trendsCmd answers a query with Google Search grounding
var trendsCmd = &cobra.Command{
	Use:   "trends [query]",
	Short: "Answer a query with Google Search grounding and cited sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HasAPIKey() {
			return missingKeyErr()
		}
		query := strings.Join(args, " ")

		client := newGeminiClient()
		result, err := client.GenerateWithSearch(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Println(result.Text)
		if len(result.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range result.Sources {
				fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
			}
		}
		return nil
	},
}

// statusCmd shows configuration, profile and backend health
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, subscription and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Data directory:  %s\n", cfg.DataDir)
		fmt.Printf("Text model:      %s\n", cfg.Model)
		fmt.Printf("Image model:     %s\n", cfg.ImageModel)
		fmt.Printf("Audio backend:   %s\n", cfg.AudioBaseURL)
		if cfg.HasAPIKey() {
			fmt.Println("Gemini API key:  configured")
		} else {
			fmt.Println("Gemini API key:  MISSING (set GEMINI_API_KEY or api_key in config.json)")
		}

		store, err := access.NewStore(filepath.Join(cfg.DataDir, "profile.db"))
		if err != nil {
			return err
		}
		defer store.Close()
		profile := store.Load()
		fmt.Printf("Tier:            %s\n", profile.Tier)
		fmt.Printf("Trial consumed:  %t\n", profile.TrialConsumed)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := audio.NewClient(cfg.AudioBaseURL).Health(ctx); err != nil {
			fmt.Printf("Audio backend:   unreachable (%v)\n", err)
		} else {
			fmt.Println("Audio backend:   healthy")
		}
		return nil
	},
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pegasus %s\n", Version)
	},
}

func newGeminiClient() *gemini.Client {
	clientCfg := gemini.DefaultClientConfig(cfg.APIKey)
	clientCfg.Model = cfg.Model
	clientCfg.ImageModel = cfg.ImageModel
	return gemini.NewClientWithConfig(clientCfg)
}

func missingKeyErr() error {
	return fmt.Errorf("no Gemini API key configured: set GEMINI_API_KEY or api_key in %s",
		filepath.Join(cfg.DataDir, "config.json"))
}

// saveDataURI decodes a base64 image data URI into the images directory.
func saveDataURI(dataDir, dataURI string) (string, error) {
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(dataURI, prefix) {
		return "", fmt.Errorf("unexpected image format")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, prefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	dir := filepath.Join(dataDir, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("pegasus_%d.jpg", time.Now().UnixNano()))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// runInteractive wires everything together and starts the TUI.
func runInteractive() error {
	defer logging.CloseAll()

	store, err := access.NewStore(filepath.Join(cfg.DataDir, "profile.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	gatekeeper := access.NewGatekeeper(store)
	plans, err := payments.LoadPlans()
	if err != nil {
		return err
	}
	gate := payments.NewGate(gatekeeper, plans)

	deps := ui.Deps{
		Config:     cfg,
		Gatekeeper: gatekeeper,
		Gate:       gate,
	}

	// Without an API key the app renders a configuration error and
	// nothing else.
	if cfg.HasAPIKey() {
		client := newGeminiClient()
		backend := audio.NewClient(cfg.AudioBaseURL)
		deps.Gemini = client
		deps.Audio = backend
		deps.Engine = studio.NewEngine(client, backend, gatekeeper)

		imageGen, err := gemini.NewImageGenerator(context.Background(), cfg.APIKey, cfg.ImageModel)
		if err != nil {
			return err
		}
		deps.Images = imageGen
	}

	logging.Boot("Starting interactive studio (version=%s)", Version)
	return ui.Run(deps)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Override the text generation model")

	rootCmd.AddCommand(textCmd, imageCmd, trendsCmd, statusCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
