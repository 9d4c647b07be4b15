package service

import (
	"context"

	"github.com/swiftmtp/swiftmtp/actor"
	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/transport"
)

// EnsureSession submits an OpenIfNeeded call at priority and awaits
// its completion under deadline.
func (s *Service) EnsureSession(ctx context.Context, opener actor.SessionOpener, priority Priority, deadline Deadline) error {
	h, err := s.Submit(ctx, priority, deadline, func(ctx context.Context) (any, error) {
		return nil, s.actor.OpenIfNeeded(ctx, opener)
	})
	if err != nil {
		return err
	}
	_, err = h.Wait(ctx)
	return err
}

// ListObjects submits a List call at priority and awaits its result
// under deadline.
func (s *Service) ListObjects(ctx context.Context, storageID, parent uint32, priority Priority, deadline Deadline) ([]ptp.ObjectInfoDataset, error) {
	h, err := s.Submit(ctx, priority, deadline, func(ctx context.Context) (any, error) {
		return s.actor.List(ctx, storageID, parent)
	})
	if err != nil {
		return nil, err
	}
	v, err := h.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return v.([]ptp.ObjectInfoDataset), nil
}

// ReadObject submits a Read call at priority and awaits the number of
// bytes transferred under deadline.
func (s *Service) ReadObject(ctx context.Context, handle uint32, offset uint64, length uint32, sink transport.Sink, priority Priority, deadline Deadline) (uint32, error) {
	h, err := s.Submit(ctx, priority, deadline, func(ctx context.Context) (any, error) {
		return s.actor.Read(ctx, handle, offset, length, sink)
	})
	if err != nil {
		return 0, err
	}
	v, err := h.Wait(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// WriteObject submits a Write call at priority and awaits the new
// object's handle under deadline.
func (s *Service) WriteObject(ctx context.Context, req actor.WriteRequest, priority Priority, deadline Deadline) (uint32, error) {
	h, err := s.Submit(ctx, priority, deadline, func(ctx context.Context) (any, error) {
		return s.actor.Write(ctx, req)
	})
	if err != nil {
		return 0, err
	}
	v, err := h.Wait(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// DeleteObject submits a Delete call at priority and awaits its
// completion under deadline.
func (s *Service) DeleteObject(ctx context.Context, storageID, handle uint32, recursive bool, priority Priority, deadline Deadline) error {
	h, err := s.Submit(ctx, priority, deadline, func(ctx context.Context) (any, error) {
		return nil, s.actor.Delete(ctx, storageID, handle, recursive)
	})
	if err != nil {
		return err
	}
	_, err = h.Wait(ctx)
	return err
}
