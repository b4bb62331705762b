// README: Bid (application) aggregate and status definitions.
package application

import (
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Application is a provider's priced offer against a move request. At most
// one application exists per (move_request, user) pair.
type Application struct {
	ID            types.ID      `json:"id"`
	MoveRequestID types.ID      `json:"move_request_id"`
	UserID        types.ID      `json:"user_id"`
	OfferedPrice  float64       `json:"offered_price"`
	DeliveryTime  string        `json:"delivery_time"`
	Message       *string       `json:"message"`
	Negotiable    bool          `json:"negotiable"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Services      []ServiceItem `json:"services"`

	// Loaded relations, present on detail-style responses.
	Provider    *user.User               `json:"user,omitempty"`
	MoveRequest *moverequest.MoveRequest `json:"move_request,omitempty"`
}

// ServiceItem is a line-item add-on priced on top of the offered price.
type ServiceItem struct {
	ID            types.ID `json:"id"`
	ApplicationID types.ID `json:"application_id"`
	ServiceName   string   `json:"service_name"`
	Price         float64  `json:"price"`
}

// ServicesTotal sums the line-item prices.
func (a *Application) ServicesTotal() float64 {
	var total float64
	for _, s := range a.Services {
		total += s.Price
	}
	return total
}

// TotalCost is the offered price plus all service line-items.
func (a *Application) TotalCost() float64 {
	return a.OfferedPrice + a.ServicesTotal()
}
