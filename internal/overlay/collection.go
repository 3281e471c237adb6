// Package overlay persists typed record collections in a storage.Store and
// reads them back defensively.
//
// Each collection lives under one key as a JSON array. Reads never fail on
// bad content: an unparsable document reads as empty and an unusable record
// is skipped, both logged as a *DecodeError. Writes go through Update, which
// retries a compare-and-swap so concurrent writers cannot lose each other's
// changes.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/storage"
)

// DefaultRetries is the number of extra compare-and-swap attempts Update makes.
const DefaultRetries = 5

// Collection is a typed view of one overlay key.
type Collection[T models.Record] struct {
	store   storage.Store
	key     string
	retries int
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	retries int
}

// WithRetries sets how many times Update retries after losing a race.
func WithRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// NewCollection creates a collection stored under key.
func NewCollection[T models.Record](store storage.Store, key string, opts ...Option) *Collection[T] {
	o := options{retries: DefaultRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{store: store, key: key, retries: o.retries}
}

// ReadAll returns the stored records in stored order.
// Absent or unparsable content yields an empty slice; only a storage
// failure is returned as an error.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	records, _, err := c.read(ctx)
	return records, err
}

// WriteAll replaces the stored collection with records.
func (c *Collection[T]) WriteAll(ctx context.Context, records []T) error {
	data, err := encode(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return err
	}
	return nil
}

// Update reads the collection, applies fn, and writes the result back only
// if nobody else wrote in between. On a lost race it starts over with fresh
// data, so fn may run more than once and must not have side effects.
// An error from fn aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, raw, err := c.read(ctx)
		if err != nil {
			return nil, err
		}

		next, err := fn(current)
		if err != nil {
			return nil, err
		}

		data, err := encode(next)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", c.key, err)
		}

		ok, err := c.store.CompareAndSwap(ctx, c.key, raw, data)
		if err != nil {
			return nil, err
		}
		if ok {
			return next, nil
		}

		casConflicts.WithLabelValues(c.key).Inc()
		slog.Debug("Overlay write lost a race, retrying", "key", c.key, "attempt", attempt+1)
	}

	slog.Warn("Overlay update gave up", "key", c.key, "attempts", c.retries+1)
	return nil, fmt.Errorf("%s: %w", c.key, ErrConflict)
}

func (c *Collection[T]) read(ctx context.Context) ([]T, []byte, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return []T{}, nil, nil
	}
	return decode[T](c.key, raw), raw, nil
}

func encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	return json.Marshal(records)
}

// decode parses a stored array, dropping whatever cannot be used.
func decode[T models.Record](key string, raw []byte) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		report(&DecodeError{Key: key, Index: -1, Reason: "malformed", Err: err})
		return []T{}
	}

	required := requiredFields[T]()
	aliases := fieldAliases[T]()
	records := make([]T, 0, len(elems))
	for i, elem := range elems {
		var rec T
		if err := json.Unmarshal(elem, &rec); err != nil {
			report(&DecodeError{Key: key, Index: i, Reason: "invalid_record", Err: err})
			continue
		}
		if id := rec.RecordID(); id <= 0 {
			report(&DecodeError{Key: key, Index: i, Reason: "invalid_record", Err: fmt.Errorf("invalid id %d", id)})
			continue
		}
		if missing := missingFields(elem, required, aliases); len(missing) > 0 {
			// Kept with zero values; no default-filling.
			schemaDrift.WithLabelValues(key).Inc()
			slog.Warn("Overlay record is missing fields",
				"key", key,
				"index", i,
				"id", rec.RecordID(),
				"missing", missing,
			)
		}
		records = append(records, rec)
	}
	return records
}

func report(err *DecodeError) {
	decodeFailures.WithLabelValues(err.Key, err.Reason).Inc()
	slog.Warn("Discarding unusable overlay data",
		"key", err.Key,
		"index", err.Index,
		"reason", err.Reason,
		"error", err,
	)
}
