// Package fetcher composes the rendering fallback chain.
package fetcher

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/metrics"
	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// RenderChain tries the primary renderer and, on any failure, the
// secondary before giving up. Either may be nil.
type RenderChain struct {
	primary   resolve.Renderer
	secondary resolve.Renderer
	log       *zap.Logger
}

// NewRenderChain builds the chain.
func NewRenderChain(primary, secondary resolve.Renderer, log *zap.Logger) *RenderChain {
	return &RenderChain{primary: primary, secondary: secondary, log: log}
}

// Render runs the chain. The outcome records which renderer produced
// it so cached results stay attributable.
func (c *RenderChain) Render(ctx context.Context, rawURL string) (resolve.RenderOutcome, error) {
	var firstErr error

	if c.primary != nil {
		out, err := c.tryOne(ctx, c.primary, "primary", rawURL)
		if err == nil && out.Found {
			return out, nil
		}
		firstErr = err
		if ctx.Err() != nil {
			return resolve.RenderOutcome{}, ctx.Err()
		}
	}

	if c.secondary != nil {
		out, err := c.tryOne(ctx, c.secondary, "secondary", rawURL)
		if err == nil && out.Found {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = errors.New("no renderer produced a result")
	}
	return resolve.RenderOutcome{}, firstErr
}

func (c *RenderChain) tryOne(ctx context.Context, r resolve.Renderer, label, rawURL string) (resolve.RenderOutcome, error) {
	out, err := r.Render(ctx, rawURL)
	name := out.Renderer
	if name == "" {
		name = label
	}
	if err != nil {
		c.log.Debug("renderer failed",
			zap.String("renderer", name), zap.String("url", rawURL), zap.Error(err))
		metrics.ObserveRendererFallback(name, false)
		return resolve.RenderOutcome{}, err
	}
	metrics.ObserveRendererFallback(name, out.Found)
	return out, nil
}
