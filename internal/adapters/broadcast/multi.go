package broadcast

import (
	"context"
	"errors"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/ports"
)

// Multi publishes every frame to each of its publishers in order.
type Multi []ports.FramePublisher

// NewMulti drops nil publishers.
func NewMulti(pubs ...ports.FramePublisher) Multi {
	out := make(Multi, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// PublishFrame implements ports.FramePublisher. All publishers are tried;
// their errors are joined.
func (m Multi) PublishFrame(ctx context.Context, f *domain.Frame) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishFrame(ctx, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
