package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/patterns"
	"github.com/aleister1102/contacthound/internal/rslimiter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAnchors(t *testing.T) {
	hrefs := []string{
		"https://school.test/about",
		"mailto:info@school.test?subject=Admission",
		"MAILTO:Principal@School.test",
		"mailto:not-an-address",
		"mailto:",
		"",
		"https://school.test/contact",
	}

	links, emails := SplitAnchors(hrefs, patterns.Default())

	assert.Equal(t, []string{"https://school.test/about", "https://school.test/contact"}, links)
	assert.Equal(t, []string{"info@school.test", "Principal@School.test"}, emails)
}

func TestRender_Disabled(t *testing.T) {
	cfg := config.NewDefaultRendererConfig()
	cfg.Enabled = false
	r, err := NewRendererBuilder(zerolog.Nop()).WithConfig(cfg).Build()
	require.NoError(t, err)
	defer r.Close()

	res, err := r.Render(context.Background(), "https://school.test")
	assert.ErrorIs(t, err, ErrRendererDisabled)
	assert.Equal(t, "https://school.test", res.URL)
	assert.Empty(t, res.BodyText)
}

func TestRender_RefusedUnderMemoryPressure(t *testing.T) {
	limiter := rslimiter.NewResourceLimiter(config.NewDefaultResourceLimiterConfig(), zerolog.Nop()).
		WithProbe(func() (float64, error) { return 0.99, nil })

	r, err := NewRendererBuilder(zerolog.Nop()).WithResourceLimiter(limiter).Build()
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), "https://school.test")
	assert.ErrorIs(t, err, rslimiter.ErrResourceExhausted)
	assert.Nil(t, r.host.browser, "no browser is launched for a refused render")
}

func TestRender_CancelledWhileWaitingForSlot(t *testing.T) {
	cfg := config.NewDefaultRendererConfig()
	cfg.PoolSize = 1
	r, err := NewRendererBuilder(zerolog.Nop()).WithConfig(cfg).Build()
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.sem.TryAcquire(1))
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Render(ctx, "https://school.test")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRendererBuilder_Validation(t *testing.T) {
	cfg := config.NewDefaultRendererConfig()
	cfg.PoolSize = 0
	_, err := NewRendererBuilder(zerolog.Nop()).WithConfig(cfg).Build()
	assert.ErrorIs(t, err, errorwrapper.ErrInvalidInput)

	cfg = config.NewDefaultRendererConfig()
	cfg.SettleTimeoutSecs = 0
	_, err = NewRendererBuilder(zerolog.Nop()).WithConfig(cfg).Build()
	assert.ErrorIs(t, err, errorwrapper.ErrInvalidInput)
}

func TestRendererBuilder_SharedHost(t *testing.T) {
	host := NewHost(config.NewDefaultRendererConfig(), zerolog.Nop())
	r, err := NewRendererBuilder(zerolog.Nop()).WithHost(host).Build()
	require.NoError(t, err)
	assert.Same(t, host, r.host)
	assert.False(t, r.ownHost)
	r.Close()
	host.Close()
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepCtx(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
