package container

import (
	"context"
	"errors"

	"cosmossdk.io/collections"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// PriorityQueueKey is the key for the PriorityQueue.
// It's a pair of (priority, item_address). In the lease module, priority is a
// unix nanosecond timestamp.
var PriorityQueueKey = collections.PairKeyCodec(
	collections.Int64Key,
	sdk.AccAddressKey,
)

// PriorityQueue is a time-ordered queue of items holding at most one entry per
// item. It is a KeySet ordered by priority (e.g., time), then by address, with
// an index from each item to its priority.
type PriorityQueue struct {
	collections.KeySet[collections.Pair[int64, sdk.AccAddress]]
	Index collections.Map[sdk.AccAddress, int64]
}

// NewPriorityQueue creates a new PriorityQueue.
func NewPriorityQueue(schema *collections.SchemaBuilder, prefix collections.Prefix, name string, indexPrefix collections.Prefix, indexName string) PriorityQueue {
	return PriorityQueue{
		KeySet: collections.NewKeySet(schema, prefix, name, PriorityQueueKey),
		Index:  collections.NewMap(schema, indexPrefix, indexName, sdk.AccAddressKey, collections.Int64Value),
	}
}

// Enqueue schedules an item at priority, replacing any entry it already has.
func (q PriorityQueue) Enqueue(ctx context.Context, itemAddr sdk.AccAddress, priority int64) error {
	if err := q.Dequeue(ctx, itemAddr); err != nil {
		return err
	}
	if err := q.Set(ctx, collections.Join(priority, itemAddr)); err != nil {
		return err
	}
	return q.Index.Set(ctx, itemAddr, priority)
}

// Dequeue removes the entry of an item. Removing an item that is not queued is a no-op.
func (q PriorityQueue) Dequeue(ctx context.Context, itemAddr sdk.AccAddress) error {
	priority, found, err := q.Priority(ctx, itemAddr)
	if err != nil || !found {
		return err
	}
	if err := q.Remove(ctx, collections.Join(priority, itemAddr)); err != nil {
		return err
	}
	return q.Index.Remove(ctx, itemAddr)
}

// Priority returns the priority an item is queued at.
func (q PriorityQueue) Priority(ctx context.Context, itemAddr sdk.AccAddress) (int64, bool, error) {
	priority, err := q.Index.Get(ctx, itemAddr)
	if errors.Is(err, collections.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return priority, true, nil
}

// WalkDue iterates over all entries in the queue with a priority <= maxPriority.
// For each due entry, the callback is invoked with the key components.
// Iteration stops when a key with priority > maxPriority is encountered or when the callback
// returns stop=true or an error.
func (q PriorityQueue) WalkDue(ctx context.Context, maxPriority int64, fn func(priority int64, itemAddr sdk.AccAddress) (stop bool, err error)) error {
	it, err := q.Iterate(ctx, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key, err := it.Key()
		if err != nil {
			return err
		}
		if key.K1() > maxPriority {
			break
		}
		stop, err := fn(key.K1(), key.K2())
		if err != nil || stop {
			return err
		}
	}
	return nil
}

// PopDue dequeues and returns up to limit items with a priority <= maxPriority,
// earliest first.
func (q PriorityQueue) PopDue(ctx context.Context, maxPriority int64, limit int) ([]sdk.AccAddress, error) {
	var due []sdk.AccAddress
	err := q.WalkDue(ctx, maxPriority, func(_ int64, itemAddr sdk.AccAddress) (bool, error) {
		due = append(due, itemAddr)
		return len(due) >= limit, nil
	})
	if err != nil {
		return nil, err
	}

	for _, addr := range due {
		if err := q.Dequeue(ctx, addr); err != nil {
			return nil, err
		}
	}
	return due, nil
}
