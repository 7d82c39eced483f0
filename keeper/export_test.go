package keeper

import (
	"context"
	"testing"
)

// TestAccessor_processDexCallbacks exposes this keeper's processDexCallbacks function for unit tests.
func (k *Keeper) TestAccessor_processDexCallbacks(t *testing.T, ctx context.Context) error {
	t.Helper()
	return k.processDexCallbacks(ctx)
}

// TestAccessor_processTimeAlarms exposes this keeper's processTimeAlarms function for unit tests.
func (k *Keeper) TestAccessor_processTimeAlarms(t *testing.T, ctx context.Context) error {
	t.Helper()
	return k.processTimeAlarms(ctx)
}
