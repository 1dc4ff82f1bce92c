// Package session drives one planning and generation cycle at a time:
// Idle, Planning, PlanReady, Generating, Complete.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/1broseidon/director/director"
	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/models"
)

// State is the controller's position in the cycle.
type State string

const (
	StateIdle       State = "idle"
	StatePlanning   State = "planning"
	StatePlanReady  State = "plan_ready"
	StateGenerating State = "generating"
	StateComplete   State = "complete"
)

var (
	ErrBusy              = errors.New("a request is already in progress")
	ErrInvalidTransition = errors.New("operation not allowed in the current state")
	ErrEmptyRequest      = errors.New("request text is empty")
	// ErrSuperseded is returned when the session was reset while a remote call was in flight.
	ErrSuperseded = errors.New("session was reset while the request was running")
)

// Backend is what the controller needs from the client.
type Backend interface {
	HasCredential() bool
	CreatePlan(ctx context.Context, req director.PlanRequest) (*models.DirectorPlan, error)
	Execute(ctx context.Context, plan *models.DirectorPlan, images models.ReferenceImageSet) (*models.GenerationResult, error)
}

// Limits caps the number of reference images per category.
type Limits struct {
	Face  int
	Body  int
	Style int
}

// DefaultLimits are the per-category maximums used when none are configured.
var DefaultLimits = Limits{Face: 5, Body: 5, Style: 4}

// Request is the user input for one cycle.
type Request struct {
	Text             string
	AuxiliaryContext string
	Images           models.ReferenceImageSet
}

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	State            State                    `json:"state"`
	Request          string                   `json:"request,omitempty"`
	AuxiliaryContext string                   `json:"drive_link,omitempty"`
	Images           map[models.Category]int  `json:"images"`
	Plan             *models.DirectorPlan     `json:"plan,omitempty"`
	Result           *models.GenerationResult `json:"result,omitempty"`
	Error            string                   `json:"error,omitempty"`
}

// Controller owns the session state. Its mutex guards state only; remote calls run unlocked.
type Controller struct {
	backend Backend
	limits  Limits
	logger  logging.Logger

	mu     sync.Mutex
	state  State
	input  Request
	plan   *models.DirectorPlan
	result *models.GenerationResult
	err    error
	epoch  uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimits sets the per-category image maximums.
func WithLimits(l Limits) Option {
	return func(c *Controller) {
		c.limits = l
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates an idle Controller.
func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		limits:  DefaultLimits,
		logger:  logging.NewNopLogger(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limits returns the configured per-category maximums.
func (c *Controller) Limits() Limits {
	return c.limits
}

// gate checks that the controller is in want. Callers hold mu.
func (c *Controller) gate(want State) error {
	switch c.state {
	case want:
		return nil
	case StatePlanning, StateGenerating:
		return ErrBusy
	default:
		return ErrInvalidTransition
	}
}

// Submit plans req. On success the plan is held for review.
func (c *Controller) Submit(ctx context.Context, req Request) (*models.DirectorPlan, error) {
	c.mu.Lock()
	if err := c.gate(StateIdle); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		c.mu.Unlock()
		return nil, ErrEmptyRequest
	}
	if !c.backend.HasCredential() {
		c.err = director.ErrCredentialMissing
		c.mu.Unlock()
		return nil, director.ErrCredentialMissing
	}

	req.Images = c.applyLimits(req.Images)
	c.input = req
	c.plan = nil
	c.result = nil
	c.err = nil
	c.state = StatePlanning
	epoch := c.epoch
	c.mu.Unlock()

	plan, err := c.backend.CreatePlan(ctx, director.PlanRequest{
		Text:             req.Text,
		Images:           req.Images,
		AuxiliaryContext: req.AuxiliaryContext,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrSuperseded
	}
	if err != nil {
		c.state = StateIdle
		c.err = err
		return nil, err
	}
	c.plan = plan
	c.state = StatePlanReady
	return plan, nil
}

// Confirm executes the held plan.
func (c *Controller) Confirm(ctx context.Context) (*models.GenerationResult, error) {
	c.mu.Lock()
	if err := c.gate(StatePlanReady); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.plan.Blocked() {
		err := &director.ContentBlocked{Reason: c.plan.BlockReason}
		c.err = err
		c.mu.Unlock()
		return nil, err
	}
	if !c.backend.HasCredential() {
		c.err = director.ErrCredentialMissing
		c.mu.Unlock()
		return nil, director.ErrCredentialMissing
	}

	plan := c.plan
	images := c.input.Images
	c.err = nil
	c.state = StateGenerating
	epoch := c.epoch
	c.mu.Unlock()

	result, err := c.backend.Execute(ctx, plan, images)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrSuperseded
	}
	if err != nil {
		c.state = StatePlanReady
		c.err = err
		return nil, err
	}
	c.result = result
	c.state = StateComplete
	return result, nil
}

// Cancel discards the held plan and returns to Idle. Inputs are kept.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gate(StatePlanReady); err != nil {
		return err
	}
	c.plan = nil
	c.err = nil
	c.state = StateIdle
	return nil
}

// Reset discards everything and returns to Idle from any state.
// A remote call still in flight finishes but its outcome is dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state = StateIdle
	c.input = Request{}
	c.plan = nil
	c.result = nil
	c.err = nil
}

// DismissError clears the held error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

// Err returns the held error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Result returns the held generation result, if any.
func (c *Controller) Result() *models.GenerationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:            c.state,
		Request:          c.input.Text,
		AuxiliaryContext: c.input.AuxiliaryContext,
		Images:           make(map[models.Category]int, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		s.Images[cat] = c.input.Images.Count(cat)
	}
	if c.plan != nil {
		p := *c.plan
		s.Plan = &p
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}

func (c *Controller) applyLimits(set models.ReferenceImageSet) models.ReferenceImageSet {
	set.Face = c.truncate(models.CategoryFace, set.Face, c.limits.Face)
	set.Body = c.truncate(models.CategoryBody, set.Body, c.limits.Body)
	set.Style = c.truncate(models.CategoryStyle, set.Style, c.limits.Style)
	return set
}

func (c *Controller) truncate(cat models.Category, images []models.ReferenceImage, max int) []models.ReferenceImage {
	if max <= 0 || len(images) <= max {
		return images
	}
	c.logger.Warnf("Dropping %d %s images above the limit of %d", len(images)-max, cat, max)
	return images[:max]
}
