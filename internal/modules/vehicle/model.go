// README: Fleet vehicle aggregate and status definitions.
package vehicle

import (
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in-use"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// Vehicle is a provider-owned fleet unit. Code is the human-facing fleet
// code ("MT - 001"), distinct from the numeric primary key.
type Vehicle struct {
	ID           types.ID    `json:"id"`
	UserID       types.ID    `json:"user_id"`
	Code         *string     `json:"vehicle_id"`
	Name         *string     `json:"name"`
	Type         string      `json:"type"`
	Model        *string     `json:"model"`
	Color        *string     `json:"color"`
	Year         *int        `json:"year"`
	LicensePlate *string     `json:"license_plate"`
	CapacityTons *float64    `json:"capacity_tons"`
	RatePerKM    *float64    `json:"rate_per_km"`
	HourlyRate   *float64    `json:"hourly_rate"`
	Image        *string     `json:"image"`
	LastUsed     *types.Date `json:"last_used"`
	Status       Status      `json:"status"`
	Notes        *string     `json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Owner *user.User `json:"owner,omitempty"`
}
