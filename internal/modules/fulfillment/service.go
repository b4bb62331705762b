// README: Driver-to-job assignment. The winning provider dispatches one of
// their drivers onto a confirmed move request, which starts the move.
package fulfillment

import (
	"context"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/driver"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/notify"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// Store performs the assignment atomically. Assign re-checks every
// precondition inside its transaction, in order: request exists and is
// confirmed, the provider holds the accepted application, the driver is
// theirs and available, and no driver is assigned yet.
type Store interface {
	Assign(ctx context.Context, providerID, moveRequestID, driverID types.ID) error
	GetMoveRequest(ctx context.Context, id types.ID) (*moverequest.MoveRequest, error)
	GetDriver(ctx context.Context, id types.ID) (*driver.Driver, error)
}

type Service struct {
	store  Store
	notify notify.Notifier
}

func NewService(store Store, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, notify: notifier}
}

// Result carries the post-assignment state of both sides.
type Result struct {
	MoveRequest *moverequest.MoveRequest `json:"move_request"`
	Driver      *driver.Driver           `json:"driver"`
}

// AssignDriver puts the provider's driver on the confirmed move request:
// the request moves to in-progress with the driver linked, the driver goes
// in-transit carrying the generated job code.
func (s *Service) AssignDriver(ctx context.Context, actor identity.Actor, moveRequestID, driverID types.ID) (*Result, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can assign drivers to move requests.")
	}

	if err := s.store.Assign(ctx, actor.UserID, moveRequestID, driverID); err != nil {
		return nil, err
	}

	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Type:          notify.EventDriverAssigned,
		RecipientID:   mr.UserID,
		MoveRequestID: moveRequestID,
		Data:          map[string]any{"driver_id": int64(driverID)},
	})

	return &Result{MoveRequest: mr, Driver: d}, nil
}
