package events

import (
	"context"
	"errors"
)

// MultiPublisher publishes every event to each of its publishers. All
// publishers are attempted; their errors are joined.
type MultiPublisher []Publisher

// Publish implements Publisher.
func (m MultiPublisher) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
