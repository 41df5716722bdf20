package logctx

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RID(ctx))

	fresh := RIDOrNew(ctx)
	assert.Len(t, fresh, 36)
	assert.NotEqual(t, fresh, RIDOrNew(ctx))

	ctx = WithRID(ctx, "req-1")
	assert.Equal(t, "req-1", RID(ctx))
	assert.Equal(t, "req-1", RIDOrNew(ctx))
}

func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Setup("debug", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup("loud", true)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
