package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/director/client"
	"github.com/1broseidon/director/config"
	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/session"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "director",
	Short: "Director - plan and generate images with Gemini",
	Long: `director turns a text request and reference images into a reviewed
production plan, then renders it with the best image model the API key can reach.

Examples:
  director serve
  director tier --api-key $GEMINI_API_KEY
  director plan --request "portrait in golden hour" --face me.jpg
  director generate --request "product shot on marble" --style ref.png --out shot.png`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(tierCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(generateCmd)

	rootCmd.PersistentFlags().String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY or API_KEY)")
}

// app bundles the configured components every command works with.
type app struct {
	cfg     *config.Config
	log     logging.Logger
	client  *client.Client
	session *session.Controller
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, cfg.Level(), cfg.LogFormat)

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}

	policy := cfg.Policy()
	opts := []client.ClientOption{
		client.WithLogger(log),
		client.WithFallbackModel(cfg.FallbackModel),
		client.WithAdvancedMarkers(cfg.AdvancedMarkers...),
		client.WithCapabilityTTL(cfg.CapabilityTTL),
		client.WithPlannerModel(cfg.PlannerModel),
		client.WithPlannerTemperature(cfg.PlannerTemperature),
		client.WithPolicy(policy.SystemInstruction, policy.OutputConstraints),
		client.WithImageModel(cfg.ImageModel),
		client.WithRetryStatuses(cfg.FallbackStatus...),
		client.WithSafetyThreshold(cfg.SafetyThreshold),
	}
	if apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}

	c, err := client.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	ctrl := session.NewController(c,
		session.WithLimits(session.Limits{
			Face:  cfg.MaxFaceImages,
			Body:  cfg.MaxBodyImages,
			Style: cfg.MaxStyleImages,
		}),
		session.WithLogger(log),
	)

	return &app{cfg: cfg, log: log, client: c, session: ctrl}, nil
}

func (a *app) Close() {
	if err := a.client.Close(); err != nil {
		a.log.Warn("Error closing client:", err)
	}
}
