// Package capability decides which image model the current credential can
// actually use, based on a cached listing of the models it has access to.
package capability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/internal/metrics"
)

// DefaultFallbackModel is the base-tier model assumed to be available to every credential.
const DefaultFallbackModel = "gemini-2.5-flash-image"

// ModelLister lists the model identifiers available to the current credential.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ModelListerFunc adapts a function to ModelLister.
type ModelListerFunc func(ctx context.Context) ([]string, error)

func (f ModelListerFunc) ListModels(ctx context.Context) ([]string, error) { return f(ctx) }

// ListingFailure is the internal record of a failed listing. It is logged, never surfaced.
type ListingFailure struct {
	Err error
}

func (e *ListingFailure) Error() string { return fmt.Sprintf("capability listing failed: %v", e.Err) }

func (e *ListingFailure) Unwrap() error { return e.Err }

// Listing is the outcome of one listing call: either Models or a Failure.
type Listing struct {
	Models  []string
	Failure *ListingFailure
}

// OK reports whether the listing succeeded.
func (l Listing) OK() bool { return l.Failure == nil }

// Resolver maps a preferred model to the best model the credential can use.
type Resolver struct {
	lister   ModelLister
	cache    *Cache
	classify Classifier
	fallback string
	logger   logging.Logger

	// downgrade decides which unavailable models fall back to the base tier.
	downgrade Classifier

	// fillMu serializes cache population so concurrent callers list once.
	fillMu sync.Mutex
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClassifier replaces the tier classifier.
func WithClassifier(c Classifier) Option {
	return func(r *Resolver) {
		if c != nil {
			r.classify = c
		}
	}
}

// WithDowngradeClassifier replaces the predicate that decides whether an
// unavailable preferred model is downgraded to the fallback.
func WithDowngradeClassifier(c Classifier) Option {
	return func(r *Resolver) {
		if c != nil {
			r.downgrade = c
		}
	}
}

// WithFallbackModel sets the base-tier model used for downgrades.
func WithFallbackModel(model string) Option {
	return func(r *Resolver) {
		if model = strings.TrimSpace(model); model != "" {
			r.fallback = model
		}
	}
}

// WithMaxAge makes cached listings expire after d. Zero keeps them for the life of the credential.
func WithMaxAge(d time.Duration) Option {
	return func(r *Resolver) {
		r.cache = NewCache(d)
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a Resolver that populates its cache from lister on demand.
func NewResolver(lister ModelLister, opts ...Option) *Resolver {
	r := &Resolver{
		lister:    lister,
		cache:     NewCache(0),
		classify:  DefaultClassifier,
		downgrade: DefaultDowngradeClassifier,
		fallback:  DefaultFallbackModel,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the model to use in place of preferred. It never fails: when
// the listing is unavailable it returns preferred and leaves the final word to
// the generation call.
func (r *Resolver) Resolve(ctx context.Context, preferred string) string {
	if !r.cache.Populated() {
		r.populate(ctx)
	}

	if !r.cache.Populated() {
		metrics.RecordResolution("degraded")
		r.logger.Debugf("Capability cache unavailable, trusting preferred model %s", preferred)
		return preferred
	}
	return r.resolveFromCache(preferred)
}

func (r *Resolver) resolveFromCache(preferred string) string {
	if found, _ := r.cache.Has(preferred); found {
		metrics.RecordResolution("exact")
		r.logger.Infof("Capability match: using %s", preferred)
		return preferred
	}

	if r.downgrade(preferred) == TierAdvanced {
		if found, _ := r.cache.Has(r.fallback); found {
			metrics.RecordResolution("downgrade")
			r.logger.Infof("Capability adapt: downgrading %s to %s", preferred, r.fallback)
			return r.fallback
		}
	}

	metrics.RecordResolution("passthrough")
	return preferred
}

func (r *Resolver) populate(ctx context.Context) {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()

	if r.cache.Populated() {
		return
	}

	gen := r.cache.Generation()
	r.logger.Info("Detecting account capabilities")
	listing := r.fetch(ctx)
	metrics.RecordListing(listing.OK())
	if !listing.OK() {
		r.logger.Warn("Failed to list models, using preferred model as-is:", listing.Failure)
		return
	}

	if !r.cache.PopulateIf(gen, listing.Models) {
		r.logger.Debug("Discarding model listing made for a previous credential")
		return
	}
	r.logger.Debugf("Capability cache populated with %d models", len(listing.Models))
}

func (r *Resolver) fetch(ctx context.Context) Listing {
	if r.lister == nil {
		return Listing{Failure: &ListingFailure{Err: fmt.Errorf("no model lister configured")}}
	}

	start := time.Now()
	ids, err := r.lister.ListModels(ctx)
	metrics.ObserveRemote("list_models", time.Since(start).Seconds())
	if err != nil {
		return Listing{Failure: &ListingFailure{Err: err}}
	}

	models := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = NormalizeModelID(id); id != "" {
			models = append(models, id)
		}
	}
	return Listing{Models: models}
}

// Invalidate drops the cached listing. Call it whenever the credential changes.
func (r *Resolver) Invalidate() {
	r.cache.Invalidate()
	r.logger.Debug("Capability cache invalidated")
}

// Tier classifies model with the resolver's classifier.
func (r *Resolver) Tier(model string) Tier {
	return r.classify(model)
}

// Fallback returns the base-tier fallback model.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Models returns the cached identifiers, or nil when the cache is not populated.
func (r *Resolver) Models() []string {
	return r.cache.Models()
}

// Cache exposes the underlying cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// NormalizeModelID strips the remote namespace (for example "models/") from an identifier.
func NormalizeModelID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}
