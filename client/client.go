package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/1broseidon/director/capability"
	"github.com/1broseidon/director/common"
	"github.com/1broseidon/director/director"
	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/models"
)

// Provider interface defines the remote operations the director needs from the generative-AI service
type Provider interface {
	ListModels(ctx context.Context) ([]string, error)
	GenerateStructured(ctx context.Context, req models.StructuredRequest) (string, error)
	GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error)
	Close() error
}

// ProviderFactory builds a Provider bound to one API key.
type ProviderFactory func(ctx context.Context, apiKey string) (Provider, error)

// Tier labels reported by DetectTier.
const (
	TierPro   = "PRO"
	TierFlash = "FLASH"
)

// TierReport is the outcome of tier detection.
type TierReport struct {
	Tier  string `json:"tier"`
	Model string `json:"model"`
}

// Client holds the credential and wires the resolver, planner and executor to the current provider
type Client struct {
	apiKey   string
	provider Provider
	factory  ProviderFactory
	logger   logging.Logger
	mu       sync.RWMutex

	resolverOpts []capability.Option
	plannerOpts  []director.PlannerOption
	executorOpts []director.ExecutorOption

	resolver *capability.Resolver
	planner  *director.Planner
	executor *director.Executor
}

// NewClient creates a new director client. When an API key is configured the provider is built immediately.
func NewClient(ctx context.Context, options ...ClientOption) (*Client, error) {
	c := &Client{
		factory: NewGeminiProvider,
		logger:  logging.NewDefaultLogger(),
	}

	// Set default log level to Disabled
	c.logger.SetLevel(common.DisabledLevel)

	// Apply options
	for _, option := range options {
		option(c)
	}

	c.logger.Info("Initializing director client")

	c.resolver = capability.NewResolver(c, append([]capability.Option{capability.WithLogger(c.logger)}, c.resolverOpts...)...)
	c.planner = director.NewPlanner(c, append([]director.PlannerOption{director.WithPlannerLogger(c.logger)}, c.plannerOpts...)...)
	c.executor = director.NewExecutor(c, c.resolver, append([]director.ExecutorOption{director.WithExecutorLogger(c.logger)}, c.executorOpts...)...)

	if key := c.apiKey; key != "" {
		c.apiKey = ""
		if err := c.SetCredential(ctx, key); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetCredential replaces the API key, rebuilds the provider and invalidates the capability cache
func (c *Client) SetCredential(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyAPIKey
	}

	provider, err := c.factory(ctx, apiKey)
	if err != nil {
		c.logger.Error("Failed to create provider:", err)
		return err
	}

	c.mu.Lock()
	old := c.provider
	c.provider = provider
	c.apiKey = apiKey
	c.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			c.logger.Warn("Error closing previous provider:", err)
		}
	}
	c.resolver.Invalidate()
	c.logger.Info("Credential updated")
	return nil
}

// HasCredential reports whether planning and generation can run
func (c *Client) HasCredential() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provider != nil
}

func (c *Client) currentProvider() (Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.provider == nil {
		return nil, director.ErrCredentialMissing
	}
	return c.provider, nil
}

// ListModels delegates to the current provider
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	p, err := c.currentProvider()
	if err != nil {
		return nil, err
	}
	return p.ListModels(ctx)
}

// GenerateStructured delegates to the current provider
func (c *Client) GenerateStructured(ctx context.Context, req models.StructuredRequest) (string, error) {
	p, err := c.currentProvider()
	if err != nil {
		return "", err
	}
	c.logger.Debugf("Generating structured content with model %s", req.Model)
	return p.GenerateStructured(ctx, req)
}

// GenerateContent delegates to the current provider
func (c *Client) GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error) {
	p, err := c.currentProvider()
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("Generating content with model %s", model)
	return p.GenerateContent(ctx, model, parts, cfg)
}

// ResolveModel returns the model the credential can use in place of preferred
func (c *Client) ResolveModel(ctx context.Context, preferred string) string {
	return c.resolver.Resolve(ctx, preferred)
}

// DetectTier resolves the preferred image model and reports whether the key reaches the pro tier
func (c *Client) DetectTier(ctx context.Context) TierReport {
	preferred := c.executor.PreferredModel()
	if !c.HasCredential() {
		return TierReport{Tier: TierFlash, Model: c.resolver.Fallback()}
	}

	model := c.resolver.Resolve(ctx, preferred)
	report := TierReport{Tier: TierFlash, Model: model}
	if c.resolver.Tier(model) == capability.TierAdvanced {
		report.Tier = TierPro
	}
	c.logger.Infof("Detected tier %s (model %s)", report.Tier, report.Model)
	return report
}

// CreatePlan asks the planner for a DirectorPlan
func (c *Client) CreatePlan(ctx context.Context, req director.PlanRequest) (*models.DirectorPlan, error) {
	if !c.HasCredential() {
		return nil, director.ErrCredentialMissing
	}
	return c.planner.CreatePlan(ctx, req)
}

// Execute runs a confirmed plan
func (c *Client) Execute(ctx context.Context, plan *models.DirectorPlan, images models.ReferenceImageSet) (*models.GenerationResult, error) {
	if !c.HasCredential() {
		return nil, director.ErrCredentialMissing
	}
	return c.executor.Execute(ctx, plan, images)
}

// Models populates the capability cache if needed and returns its contents
func (c *Client) Models(ctx context.Context) ([]string, error) {
	if !c.HasCredential() {
		return nil, director.ErrCredentialMissing
	}
	c.resolver.Resolve(ctx, c.executor.PreferredModel())
	ids := c.resolver.Models()
	if ids == nil {
		return nil, errors.New("model listing unavailable for this credential")
	}
	return ids, nil
}

// Resolver returns the capability resolver
func (c *Client) Resolver() *capability.Resolver {
	return c.resolver
}

// Logger returns the client's logger
func (c *Client) Logger() logging.Logger {
	return c.logger
}

// Close closes the current provider
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider == nil {
		return nil
	}
	err := c.provider.Close()
	if err != nil {
		c.logger.Error("Error closing provider:", err)
	}
	c.provider = nil
	return err
}
