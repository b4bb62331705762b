// README: Move request aggregate and status definitions.
package moverequest

import (
	"fmt"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// ValidStatus reports whether s is one of the request statuses. The original
// flow imposes no transition graph beyond the enum itself; a provider with the
// accepted application may set any of these freely.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

type MoveRequest struct {
	ID                    types.ID        `json:"id"`
	UserID                types.ID        `json:"user_id"`
	DriverID              *types.ID       `json:"driver_id"`
	MoveType              string          `json:"move_type"`
	VehicleType           string          `json:"vehicle_type"`
	MoveTitle             string          `json:"move_title"`
	PickupAddress         string          `json:"pickup_address"`
	DropAddress           string          `json:"drop_address"`
	MoveDate              types.Date      `json:"move_date"`
	MoveTime              types.TimeOfDay `json:"move_time"`
	PropertySize          string          `json:"property_size"`
	BudgetMin             float64         `json:"budget_min"`
	BudgetMax             float64         `json:"budget_max"`
	EstimatedDeliveryDate *types.Date     `json:"estimated_delivery_date"`
	Description           *string         `json:"description"`
	Status                Status          `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Items                 []Item          `json:"items,omitempty"`
}

type Item struct {
	ID            types.ID `json:"id"`
	MoveRequestID types.ID `json:"move_request_id"`
	ItemName      string   `json:"item_name"`
	Quantity      int      `json:"quantity"`
	Notes         *string  `json:"notes"`
}

// JobCode renders the human-readable job label derived from the request's
// creation year and zero-padded id, e.g. "JOB-ID: #MV-2026-007".
func JobCode(id types.ID, createdAt time.Time) string {
	return fmt.Sprintf("JOB-ID: #MV-%d-%03d", createdAt.Year(), int64(id))
}
