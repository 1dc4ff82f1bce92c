package capability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	models []string
	err    error
	calls  atomic.Int32
}

func (f *fakeLister) ListModels(ctx context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func TestResolveExactMatch(t *testing.T) {
	lister := &fakeLister{models: []string{"models/gemini-3-pro-image-preview", "models/gemini-2.5-flash-image"}}
	r := NewResolver(lister)

	got := r.Resolve(context.Background(), "gemini-3-pro-image-preview")
	assert.Equal(t, "gemini-3-pro-image-preview", got)
	assert.EqualValues(t, 1, lister.calls.Load())
}

func TestResolveDowngradesAdvancedModel(t *testing.T) {
	lister := &fakeLister{models: []string{"models/gemini-2.5-flash-image", "models/gemini-2.5-flash"}}
	r := NewResolver(lister)

	assert.Equal(t, DefaultFallbackModel, r.Resolve(context.Background(), "gemini-3-pro-image-preview"))
}

func TestResolvePassthrough(t *testing.T) {
	tests := []struct {
		name      string
		models    []string
		preferred string
	}{
		{"base model not listed", []string{"gemini-2.5-flash-image"}, "gemini-2.0-flash-exp"},
		{"advanced model without fallback", []string{"gemini-2.5-flash"}, "gemini-3-pro-image-preview"},
		{"empty listing", []string{}, "gemini-3-pro-image-preview"},
		{"video model not listed", []string{"gemini-2.5-flash-image"}, "veo-3.0-generate-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&fakeLister{models: tt.models})
			assert.Equal(t, tt.preferred, r.Resolve(context.Background(), tt.preferred))
			assert.True(t, r.Cache().Populated())
		})
	}
}

func TestResolveDegradesOnListingFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("permission denied")}
	r := NewResolver(lister)

	got := r.Resolve(context.Background(), "gemini-3-pro-image-preview")
	assert.Equal(t, "gemini-3-pro-image-preview", got)
	assert.False(t, r.Cache().Populated())

	// The failure is not cached, so the next call lists again.
	r.Resolve(context.Background(), "gemini-3-pro-image-preview")
	assert.EqualValues(t, 2, lister.calls.Load())
}

func TestResolveReusesCache(t *testing.T) {
	lister := &fakeLister{models: []string{"models/gemini-2.5-flash-image"}}
	r := NewResolver(lister)

	first := r.Resolve(context.Background(), "gemini-3-pro-image-preview")
	lister.models = []string{"models/gemini-3-pro-image-preview"}
	second := r.Resolve(context.Background(), "gemini-3-pro-image-preview")

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, lister.calls.Load())
}

func TestInvalidateForcesRelisting(t *testing.T) {
	lister := &fakeLister{models: []string{"models/gemini-2.5-flash-image"}}
	r := NewResolver(lister)

	assert.Equal(t, DefaultFallbackModel, r.Resolve(context.Background(), "gemini-3-pro-image-preview"))

	lister.models = []string{"models/gemini-3-pro-image-preview"}
	r.Invalidate()
	assert.Equal(t, "gemini-3-pro-image-preview", r.Resolve(context.Background(), "gemini-3-pro-image-preview"))
	assert.EqualValues(t, 2, lister.calls.Load())
}

func TestConcurrentResolveListsOnce(t *testing.T) {
	block := make(chan struct{})
	var calls atomic.Int32
	lister := ModelListerFunc(func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		<-block
		return []string{"gemini-2.5-flash-image"}, nil
	})
	r := NewResolver(lister)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "gemini-3-pro-image-preview")
		}(i)
	}
	close(block)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, got := range results {
		assert.Equal(t, DefaultFallbackModel, got)
	}
}

func TestResolverOptions(t *testing.T) {
	lister := &fakeLister{models: []string{"custom-base"}}
	r := NewResolver(lister,
		WithFallbackModel("custom-base"),
		WithClassifier(MarkerClassifier("ultra")),
		WithDowngradeClassifier(MarkerClassifier("ultra")),
	)

	assert.Equal(t, "custom-base", r.Fallback())
	assert.Equal(t, TierAdvanced, r.Tier("image-ultra-1"))
	assert.Equal(t, "custom-base", r.Resolve(context.Background(), "image-ultra-1"))
	assert.Equal(t, "gemini-3-pro-image-preview", r.Resolve(context.Background(), "gemini-3-pro-image-preview"))
	assert.Equal(t, []string{"custom-base"}, r.Models())
}

func TestNilListerDegrades(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "gemini-3-pro-image-preview", r.Resolve(context.Background(), "gemini-3-pro-image-preview"))
	assert.Nil(t, r.Models())
}

func TestNormalizeModelID(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", NormalizeModelID("models/gemini-2.5-flash"))
	assert.Equal(t, "gemini-2.5-flash", NormalizeModelID("gemini-2.5-flash"))
	assert.Equal(t, "", NormalizeModelID("models/"))
	assert.Equal(t, "x", NormalizeModelID("  tunedModels/a/x "))
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Populate([]string{"b", "a"})
	found, populated := c.Has("a")
	require.True(t, populated)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, c.Models())

	now = now.Add(2 * time.Minute)
	found, populated = c.Has("a")
	assert.False(t, populated)
	assert.False(t, found)
	assert.False(t, c.Populated())
}

func TestCacheWithoutMaxAgeNeverExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(0)
	c.now = func() time.Time { return now }
	c.Populate(nil)

	now = now.Add(24 * 365 * time.Hour)
	assert.True(t, c.Populated())

	c.Invalidate()
	assert.False(t, c.Populated())
}

func TestMarkerClassifier(t *testing.T) {
	tests := []struct {
		model string
		want  Tier
	}{
		{"gemini-3-pro-image-preview", TierAdvanced},
		{"gemini-2.5-flash-image", TierBase},
		{"Gemini-2.0-Flash-Preview-Image-Generation", TierAdvanced},
		{"veo-2.0-generate-001", TierAdvanced},
		{"", TierBase},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.model))
		})
	}
	assert.Equal(t, TierBase, DefaultDowngradeClassifier("veo-2.0-generate-001"))
	assert.Equal(t, TierAdvanced, DefaultDowngradeClassifier("gemini-3-pro-image-preview"))
	assert.Equal(t, "advanced", TierAdvanced.String())
	assert.Equal(t, "base", TierBase.String())
}

func TestInvalidateDiscardsListingInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var first atomic.Bool
	lister := ModelListerFunc(func(ctx context.Context) ([]string, error) {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-release
			return []string{"gemini-2.5-flash-image"}, nil
		}
		return []string{"gemini-3-pro-image-preview", "gemini-2.5-flash-image"}, nil
	})
	r := NewResolver(lister)

	done := make(chan string)
	go func() { done <- r.Resolve(context.Background(), "gemini-3-pro-image-preview") }()
	<-started
	r.Invalidate()
	close(release)

	// The stale listing is dropped, so the first caller degrades.
	assert.Equal(t, "gemini-3-pro-image-preview", <-done)
	assert.False(t, r.Cache().Populated())

	assert.Equal(t, "gemini-3-pro-image-preview", r.Resolve(context.Background(), "gemini-3-pro-image-preview"))
	assert.Equal(t, []string{"gemini-2.5-flash-image", "gemini-3-pro-image-preview"}, r.Models())
}
