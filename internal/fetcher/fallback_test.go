package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

type stubRenderer struct {
	out   resolve.RenderOutcome
	err   error
	calls int
}

func (s *stubRenderer) Render(context.Context, string) (resolve.RenderOutcome, error) {
	s.calls++
	return s.out, s.err
}

func TestRenderChain_PrimaryWins(t *testing.T) {
	t.Parallel()

	primary := &stubRenderer{out: resolve.RenderOutcome{Found: true, Renderer: "headless", Confidence: 0.9}}
	secondary := &stubRenderer{}
	chain := NewRenderChain(primary, secondary, zap.NewNop())

	out, err := chain.Render(context.Background(), "https://example.com/p/x")
	require.NoError(t, err)
	require.Equal(t, "headless", out.Renderer)
	require.Zero(t, secondary.calls)
}

func TestRenderChain_FallsBackOnPrimaryError(t *testing.T) {
	t.Parallel()

	primary := &stubRenderer{err: errors.New("browser crashed")}
	secondary := &stubRenderer{out: resolve.RenderOutcome{Found: true, Renderer: "reader", Confidence: 0.8}}
	chain := NewRenderChain(primary, secondary, zap.NewNop())

	out, err := chain.Render(context.Background(), "https://example.com/p/x")
	require.NoError(t, err)
	require.Equal(t, "reader", out.Renderer)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestRenderChain_FallsBackOnEmptyPrimary(t *testing.T) {
	t.Parallel()

	primary := &stubRenderer{out: resolve.RenderOutcome{Renderer: "headless"}} // ran but found nothing
	secondary := &stubRenderer{out: resolve.RenderOutcome{Found: true, Renderer: "reader"}}
	chain := NewRenderChain(primary, secondary, zap.NewNop())

	out, err := chain.Render(context.Background(), "https://example.com/p/x")
	require.NoError(t, err)
	require.Equal(t, "reader", out.Renderer)
}

func TestRenderChain_BothFail(t *testing.T) {
	t.Parallel()

	primary := &stubRenderer{err: errors.New("browser crashed")}
	secondary := &stubRenderer{err: resolve.ErrQuotaExceeded}
	chain := NewRenderChain(primary, secondary, zap.NewNop())

	_, err := chain.Render(context.Background(), "https://example.com/p/x")
	require.Error(t, err)
}

func TestRenderChain_CancelledBetweenRenderers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	primary := &stubRenderer{err: context.Canceled}
	secondary := &stubRenderer{out: resolve.RenderOutcome{Found: true}}
	chain := NewRenderChain(primary, secondary, zap.NewNop())

	cancel()
	_, err := chain.Render(ctx, "https://example.com/p/x")
	require.Error(t, err)
	require.Zero(t, secondary.calls)
}
