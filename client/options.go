package client

import (
	"errors"
	"time"

	"github.com/1broseidon/director/capability"
	"github.com/1broseidon/director/common"
	"github.com/1broseidon/director/director"
	"github.com/1broseidon/director/internal/logging"
)

// ErrEmptyAPIKey is returned when an empty credential is supplied
var ErrEmptyAPIKey = errors.New("api key is empty")

// ClientOption is a function type for configuring the Client.
// It allows for flexible and extensible client configuration.
type ClientOption func(*Client)

// WithAPIKey sets the initial credential. The provider is created by NewClient.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithProviderFactory replaces the function used to build a Provider from an API key.
func WithProviderFactory(factory ProviderFactory) ClientOption {
	return func(c *Client) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithLogger sets the logger for the client.
// The provided logger will be used for all logging operations within the client.
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLogLevel sets the log level for the client.
// This option will only take effect if the client's logger supports setting log levels.
func WithLogLevel(level common.LogLevel) ClientOption {
	return func(c *Client) {
		if logger, ok := c.logger.(interface{ SetLevel(common.LogLevel) }); ok {
			logger.SetLevel(level)
		}
	}
}

// WithFallbackModel sets the base-tier model used for downgrades and retries.
func WithFallbackModel(model string) ClientOption {
	return func(c *Client) {
		c.resolverOpts = append(c.resolverOpts, capability.WithFallbackModel(model))
	}
}

// WithAdvancedMarkers sets the name fragments that classify a model as advanced tier.
func WithAdvancedMarkers(markers ...string) ClientOption {
	return func(c *Client) {
		if len(markers) > 0 {
			c.resolverOpts = append(c.resolverOpts, capability.WithClassifier(capability.MarkerClassifier(markers...)))
		}
	}
}

// WithCapabilityTTL makes the capability cache expire. Zero keeps it until the credential changes.
func WithCapabilityTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.resolverOpts = append(c.resolverOpts, capability.WithMaxAge(ttl))
	}
}

// WithPlannerModel sets the model used for planning.
func WithPlannerModel(model string) ClientOption {
	return func(c *Client) {
		c.plannerOpts = append(c.plannerOpts, director.WithPlannerModel(model))
	}
}

// WithPlannerTemperature sets the planning temperature.
func WithPlannerTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.plannerOpts = append(c.plannerOpts, director.WithTemperature(t))
	}
}

// WithPolicy sets the planner's system instruction and output constraints.
func WithPolicy(systemInstruction string, constraints director.OutputConstraints) ClientOption {
	return func(c *Client) {
		c.plannerOpts = append(c.plannerOpts,
			director.WithSystemInstruction(systemInstruction),
			director.WithOutputConstraints(constraints),
		)
	}
}

// WithImageModel sets the preferred image model used when a plan does not suggest one.
func WithImageModel(model string) ClientOption {
	return func(c *Client) {
		c.executorOpts = append(c.executorOpts, director.WithPreferredModel(model))
	}
}

// WithRetryStatuses sets the statuses that trigger a retry against the fallback model.
func WithRetryStatuses(statuses ...int) ClientOption {
	return func(c *Client) {
		c.executorOpts = append(c.executorOpts, director.WithRetryStatuses(statuses...))
	}
}

// WithSafetyThreshold sets the harm-block threshold for planning and generation.
func WithSafetyThreshold(threshold string) ClientOption {
	return func(c *Client) {
		c.plannerOpts = append(c.plannerOpts, director.WithPlannerSafetyThreshold(threshold))
		c.executorOpts = append(c.executorOpts, director.WithExecutorSafetyThreshold(threshold))
	}
}
