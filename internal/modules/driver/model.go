// README: Driver team aggregate and status definitions. A driver row is a
// moving team led by a provider-side user.
package driver

import (
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/vehicle"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusInTransit Status = "in-transit"
	StatusOnBreak   Status = "on-break"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusActive, StatusInTransit, StatusOnBreak:
		return true
	}
	return false
}

type Driver struct {
	ID                    types.ID    `json:"id"`
	UserID                types.ID    `json:"user_id"`
	TeamName              string      `json:"team_name"`
	Status                Status      `json:"status"`
	JobAssignment         *string     `json:"job_assignment"`
	TruckNumber           string      `json:"truck_number"`
	Rating                float64     `json:"rating"`
	LicenseExpiry         *types.Date `json:"license_expiry"`
	VehicleMaintenanceDue *types.Date `json:"vehicle_maintenance_due"`
	CompletedJobs         int         `json:"completed_jobs"`
	AssignedVehicleID     *types.ID   `json:"assigned_vehicle_id"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`

	TeamLeader      *user.User       `json:"team_leader,omitempty"`
	AssignedVehicle *vehicle.Vehicle `json:"assigned_vehicle,omitempty"`
}
