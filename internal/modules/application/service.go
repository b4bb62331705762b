// README: Bidding and acceptance service. Submission and updates act on a
// single bid; Decide carries the fan-out acceptance transaction.
package application

import (
	"context"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/notify"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// ServicePatch is one entry of the authoritative service list sent with an
// update: entries with an ID update that row, entries without insert a new
// one, and existing rows absent from the list are deleted.
type ServicePatch struct {
	ID          *types.ID `json:"id"`
	ServiceName string    `json:"service_name" binding:"required,max=255"`
	Price       float64   `json:"price" binding:"min=0"`
}

// Store is the persistence surface for bids. Mutating methods run as one
// transaction each; Accept and the pending-state checks re-verify status
// inside the transaction and report ErrConflict when a concurrent writer won.
type Store interface {
	GetMoveRequest(ctx context.Context, id types.ID) (*moverequest.MoveRequest, error)
	Get(ctx context.Context, moveRequestID, appID types.ID) (*Application, error)
	HasApplied(ctx context.Context, moveRequestID, userID types.ID) (bool, error)
	HasPending(ctx context.Context, moveRequestID types.ID) (bool, error)
	ListByMoveRequest(ctx context.Context, moveRequestID types.ID) ([]Application, error)
	Create(ctx context.Context, app *Application) error
	// Update persists scalar fields and applies the service list; it must
	// only touch rows still in status=pending.
	Update(ctx context.Context, app *Application, services []ServicePatch) error
	// Accept marks the application accepted, bulk-rejects every other
	// pending application on the same request, and confirms the request,
	// all in one transaction. It returns the user ids of the bulk-rejected
	// bidders.
	Accept(ctx context.Context, moveRequestID, appID types.ID) ([]types.ID, error)
	// Reject marks only this application rejected.
	Reject(ctx context.Context, moveRequestID, appID types.ID) error
}

type Service struct {
	store  Store
	users  user.Directory
	notify notify.Notifier
}

func NewService(store Store, users user.Directory, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, users: users, notify: notifier}
}

type SubmitCommand struct {
	OfferedPrice float64
	DeliveryTime string
	Message      *string
	Negotiable   bool
	Services     []ServicePatch
}

// Submit creates a pending bid with its service line-items. A provider may
// hold at most one bid per move request.
func (s *Service) Submit(ctx context.Context, actor identity.Actor, moveRequestID types.ID, cmd SubmitCommand) (*Application, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can apply for move requests.")
	}
	if cmd.OfferedPrice < 0 {
		return nil, apperr.Validation("The offered price must be at least 0.")
	}
	if cmd.DeliveryTime == "" {
		return nil, apperr.Validation("The delivery time field is required.")
	}
	for _, svc := range cmd.Services {
		if svc.ServiceName == "" {
			return nil, apperr.Validation("The service name field is required.")
		}
		if svc.Price < 0 {
			return nil, apperr.Validation("The service price must be at least 0.")
		}
	}

	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}

	applied, err := s.store.HasApplied(ctx, moveRequestID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, apperr.Conflict("You have already applied for this move request")
	}

	app := &Application{
		MoveRequestID: moveRequestID,
		UserID:        actor.UserID,
		OfferedPrice:  cmd.OfferedPrice,
		DeliveryTime:  cmd.DeliveryTime,
		Message:       cmd.Message,
		Negotiable:    cmd.Negotiable,
		Status:        StatusPending,
	}
	for _, svc := range cmd.Services {
		app.Services = append(app.Services, ServiceItem{ServiceName: svc.ServiceName, Price: svc.Price})
	}

	if err := s.store.Create(ctx, app); err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Type:          notify.EventBidSubmitted,
		RecipientID:   mr.UserID,
		MoveRequestID: moveRequestID,
		Data:          map[string]any{"application_id": int64(app.ID)},
	})

	return s.load(ctx, app, true)
}

type UpdateCommand struct {
	OfferedPrice *float64
	DeliveryTime *string
	Message      *string
	Negotiable   *bool
	// Services, when non-nil, is the new authoritative full set.
	Services *[]ServicePatch
}

// Update patches the owner's still-pending bid. Scalars are replaced when
// present and retained otherwise; the service list is upsert-by-id with
// deletion of absent rows.
func (s *Service) Update(ctx context.Context, actor identity.Actor, moveRequestID, appID types.ID, cmd UpdateCommand) (*Application, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can update applications.")
	}

	if _, err := s.store.GetMoveRequest(ctx, moveRequestID); err != nil {
		return nil, err
	}
	app, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != actor.UserID {
		return nil, apperr.Forbidden("Unauthorized. You can only update your own applications.")
	}
	if app.Status != StatusPending {
		return nil, apperr.Conflictf("Cannot update application. Application has already been %s.", app.Status)
	}

	if cmd.OfferedPrice != nil {
		if *cmd.OfferedPrice < 0 {
			return nil, apperr.Validation("The offered price must be at least 0.")
		}
		app.OfferedPrice = *cmd.OfferedPrice
	}
	if cmd.DeliveryTime != nil {
		app.DeliveryTime = *cmd.DeliveryTime
	}
	if cmd.Message != nil {
		app.Message = cmd.Message
	}
	if cmd.Negotiable != nil {
		app.Negotiable = *cmd.Negotiable
	}

	var services []ServicePatch
	if cmd.Services != nil {
		services = *cmd.Services
		for _, svc := range services {
			if svc.Price < 0 || svc.ServiceName == "" {
				return nil, apperr.Validation("Each service needs a name and a non-negative price.")
			}
		}
	}

	if err := s.store.Update(ctx, app, services); err != nil {
		return nil, err
	}

	fresh, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, fresh, true)
}

type Decision string

const (
	DecisionAccept Decision = "accepted"
	DecisionReject Decision = "rejected"
)

// Decide accepts or rejects a pending bid. Accepting also rejects every
// competing pending bid and confirms the move request in the same
// transaction, so a concurrent second accept observes the settled state and
// fails with a conflict.
func (s *Service) Decide(ctx context.Context, actor identity.Actor, moveRequestID, appID types.ID, decision Decision) (*Application, string, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, "", apperr.Validation("The selected status is invalid.")
	}

	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, "", err
	}
	if mr.UserID != actor.UserID {
		return nil, "", apperr.Forbidden("Unauthorized. You can only update applications for your own move requests.")
	}

	app, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, "", err
	}
	if app.Status != StatusPending {
		return nil, "", apperr.Conflict("Application status has already been updated")
	}

	var message string
	if decision == DecisionAccept {
		if !actor.IsCustomer() {
			return nil, "", apperr.Forbidden("Unauthorized. Only customer can accept applications.")
		}
		rejected, err := s.store.Accept(ctx, moveRequestID, appID)
		if err != nil {
			return nil, "", err
		}
		message = "Application accepted successfully. All other pending applications have been rejected."

		s.notify.Publish(ctx, notify.Event{
			Type:          notify.EventBidAccepted,
			RecipientID:   app.UserID,
			MoveRequestID: moveRequestID,
			Data:          map[string]any{"application_id": int64(appID)},
		})
		for _, uid := range rejected {
			s.notify.Publish(ctx, notify.Event{
				Type:          notify.EventBidRejected,
				RecipientID:   uid,
				MoveRequestID: moveRequestID,
			})
		}
	} else {
		if err := s.store.Reject(ctx, moveRequestID, appID); err != nil {
			return nil, "", err
		}
		message = "Application rejected successfully."

		s.notify.Publish(ctx, notify.Event{
			Type:          notify.EventBidRejected,
			RecipientID:   app.UserID,
			MoveRequestID: moveRequestID,
			Data:          map[string]any{"application_id": int64(appID)},
		})
	}

	fresh, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, "", err
	}
	loaded, err := s.load(ctx, fresh, true)
	if err != nil {
		return nil, "", err
	}
	return loaded, message, nil
}

// ListResult carries all bids on a request with per-status counts.
type ListResult struct {
	TotalApplications int           `json:"total_applications"`
	TotalPending      int           `json:"total_pending"`
	TotalAccepted     int           `json:"total_accepted"`
	TotalRejected     int           `json:"total_rejected"`
	Applications      []Application `json:"applications"`
}

// List returns every bid on the customer's own move request.
func (s *Service) List(ctx context.Context, actor identity.Actor, moveRequestID types.ID) (*ListResult, error) {
	if !actor.IsCustomer() {
		return nil, apperr.Forbidden("Unauthorized. Only customers can view applications for their move requests.")
	}

	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}
	if mr.UserID != actor.UserID {
		return nil, apperr.Forbidden("Unauthorized. You can only view applications for your own move requests.")
	}

	hasPending, err := s.store.HasPending(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}
	if !hasPending {
		return nil, apperr.Forbidden("This move request is already assigned.")
	}

	apps, err := s.store.ListByMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}

	result := &ListResult{TotalApplications: len(apps), Applications: apps}
	for i := range apps {
		switch apps[i].Status {
		case StatusPending:
			result.TotalPending++
		case StatusAccepted:
			result.TotalAccepted++
		case StatusRejected:
			result.TotalRejected++
		}
		if _, err := s.loadProvider(ctx, &result.Applications[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// View returns one bid on the customer's own move request.
func (s *Service) View(ctx context.Context, actor identity.Actor, moveRequestID, appID types.ID) (*Application, error) {
	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}
	if mr.UserID != actor.UserID {
		return nil, apperr.Forbidden("Unauthorized. You can only view applications for your own move requests.")
	}

	app, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, app, true)
}

// DetailResult is the quote view of a single bid: who is offering, what the
// move is, and what it would cost.
type DetailResult struct {
	Application   *Application             `json:"application"`
	Provider      *user.User               `json:"provider"`
	MoveRequest   *moverequest.MoveRequest `json:"move_request"`
	CostBreakdown CostBreakdown            `json:"cost_breakdown"`
}

type CostBreakdown struct {
	OfferedPrice  float64       `json:"offered_price"`
	Services      []ServiceItem `json:"services"`
	ServicesTotal float64       `json:"services_total"`
	TotalCost     float64       `json:"total_cost"`
}

// Detail returns the full quote view of one bid for the owning customer.
func (s *Service) Detail(ctx context.Context, actor identity.Actor, moveRequestID, appID types.ID) (*DetailResult, error) {
	if !actor.IsCustomer() {
		return nil, apperr.Forbidden("Unauthorized. Only customers can view application details.")
	}
	mr, err := s.store.GetMoveRequest(ctx, moveRequestID)
	if err != nil {
		return nil, err
	}
	if mr.UserID != actor.UserID {
		return nil, apperr.Forbidden("Unauthorized. You can only view applications for your own move requests.")
	}

	app, err := s.store.Get(ctx, moveRequestID, appID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadProvider(ctx, app); err != nil {
		return nil, err
	}

	return &DetailResult{
		Application: app,
		Provider:    app.Provider,
		MoveRequest: mr,
		CostBreakdown: CostBreakdown{
			OfferedPrice:  app.OfferedPrice,
			Services:      app.Services,
			ServicesTotal: app.ServicesTotal(),
			TotalCost:     app.TotalCost(),
		},
	}, nil
}

func (s *Service) load(ctx context.Context, app *Application, withMoveRequest bool) (*Application, error) {
	if _, err := s.loadProvider(ctx, app); err != nil {
		return nil, err
	}
	if withMoveRequest {
		mr, err := s.store.GetMoveRequest(ctx, app.MoveRequestID)
		if err != nil {
			return nil, err
		}
		app.MoveRequest = mr
	}
	return app, nil
}

func (s *Service) loadProvider(ctx context.Context, app *Application) (*Application, error) {
	if s.users == nil {
		return app, nil
	}
	u, err := s.users.Get(ctx, app.UserID)
	if err != nil {
		return nil, err
	}
	app.Provider = u
	return app, nil
}
