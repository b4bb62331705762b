// README: Move request service; creation, provider browsing, and role-scoped
// status updates.
package moverequest

import (
	"context"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/notify"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// Store is the persistence surface the service needs. The production
// implementation is PGStore; tests substitute an in-memory double.
type Store interface {
	Create(ctx context.Context, mr *MoveRequest) error
	Get(ctx context.Context, id types.ID) (*MoveRequest, error)
	ListPending(ctx context.Context, f BrowseFilter) ([]MoveRequest, error)
	WonStatusCounts(ctx context.Context, providerID types.ID) (StatusCounts, error)
	UpdateStatus(ctx context.Context, id types.ID, status Status) error
	HasAcceptedApplication(ctx context.Context, moveRequestID, userID types.ID) (bool, error)
}

// StatusCounts aggregates a provider's won requests (requests carrying that
// provider's accepted application) by status.
type StatusCounts struct {
	Total      int `json:"total_requests"`
	Confirmed  int `json:"total_confirmed_requests"`
	InProgress int `json:"total_in_progress_requests"`
	Completed  int `json:"total_completed_requests"`
	Rejected   int `json:"total_rejected_requests"`
}

type BrowseFilter struct {
	Search      string
	Location    string
	VehicleType string
	BudgetMin   *float64
	BudgetMax   *float64
}

type BrowseResult struct {
	StatusCounts
	TotalPending int           `json:"total_pending_requests"`
	MoveRequests []MoveRequest `json:"move_requests"`
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

type ItemInput struct {
	ItemName string  `json:"item_name" binding:"required,max=255"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Notes    *string `json:"notes"`
}

type CreateCommand struct {
	MoveType              string
	VehicleType           string
	MoveTitle             string
	PickupAddress         string
	DropAddress           string
	MoveDate              types.Date
	MoveTime              types.TimeOfDay
	PropertySize          string
	BudgetMin             float64
	BudgetMax             float64
	EstimatedDeliveryDate *types.Date
	Description           *string
	Items                 []ItemInput
}

// Create validates the command and persists the request together with its
// items in one transaction. Budget and delivery-date bounds are only checked
// here, at creation time.
func (s *Service) Create(ctx context.Context, actor identity.Actor, cmd CreateCommand) (*MoveRequest, error) {
	if !actor.IsCustomer() {
		return nil, apperr.Forbidden("Unauthorized. Only customer can create move requests.")
	}
	if cmd.BudgetMax < cmd.BudgetMin {
		return nil, apperr.Validation("The budget max must be greater than or equal to budget min.")
	}
	if cmd.EstimatedDeliveryDate != nil && cmd.EstimatedDeliveryDate.Before(cmd.MoveDate.Time) {
		return nil, apperr.Validation("The estimated delivery date must be a date after or equal to move date.")
	}
	if len(cmd.Items) == 0 {
		return nil, apperr.Validation("The items field is required.")
	}
	if !cmd.MoveTime.Valid() {
		return nil, apperr.Validation("The move time does not match the format H:i:s.")
	}

	mr := &MoveRequest{
		UserID:                actor.UserID,
		MoveType:              cmd.MoveType,
		VehicleType:           cmd.VehicleType,
		MoveTitle:             cmd.MoveTitle,
		PickupAddress:         cmd.PickupAddress,
		DropAddress:           cmd.DropAddress,
		MoveDate:              cmd.MoveDate,
		MoveTime:              cmd.MoveTime,
		PropertySize:          cmd.PropertySize,
		BudgetMin:             cmd.BudgetMin,
		BudgetMax:             cmd.BudgetMax,
		EstimatedDeliveryDate: cmd.EstimatedDeliveryDate,
		Description:           cmd.Description,
		Status:                StatusPending,
	}
	for _, it := range cmd.Items {
		mr.Items = append(mr.Items, Item{ItemName: it.ItemName, Quantity: it.Quantity, Notes: it.Notes})
	}

	if err := s.store.Create(ctx, mr); err != nil {
		return nil, err
	}
	return mr, nil
}

// Browse lists pending requests for a provider, with the provider's own
// won-request counters alongside.
func (s *Service) Browse(ctx context.Context, actor identity.Actor, f BrowseFilter) (*BrowseResult, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can view move requests.")
	}

	pending, err := s.store.ListPending(ctx, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.WonStatusCounts(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &BrowseResult{
		StatusCounts: counts,
		TotalPending: len(pending),
		MoveRequests: pending,
	}, nil
}

// Get returns a single request with items.
func (s *Service) Get(ctx context.Context, id types.ID) (*MoveRequest, error) {
	return s.store.Get(ctx, id)
}

// UpdateStatus sets the request status. Only the provider holding the
// accepted application may call it; any enum value is allowed (no transition
// graph, matching the original flow).
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, id types.ID, status Status) (*MoveRequest, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can update move request status.")
	}
	if !ValidStatus(status) {
		return nil, apperr.Validation("The selected status is invalid.")
	}

	mr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	accepted, err := s.store.HasAcceptedApplication(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperr.Forbidden("Unauthorized. You can only update move requests where your application has been accepted.")
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Type:          notify.EventStatusChanged,
		RecipientID:   mr.UserID,
		MoveRequestID: id,
		Data:          map[string]any{"status": string(status)},
	})

	return s.store.Get(ctx, id)
}
