// README: Driver team management: CRUD, fleet assignment, alerts and
// performance views.
package driver

import (
	"context"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/ratings"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type ListFilter struct {
	Status string
	Search string
}

type Store interface {
	List(ctx context.Context, f ListFilter) ([]Driver, error)
	Get(ctx context.Context, id types.ID) (*Driver, error)
	Create(ctx context.Context, d *Driver) error
	Update(ctx context.Context, d *Driver) error
	UpdateStatus(ctx context.Context, id types.ID, status Status) error
	Delete(ctx context.Context, id types.ID) error
	// ExpiringLicenses returns drivers whose license expires inside
	// [from, to], MaintenanceDue those whose maintenance falls due inside
	// [from, to].
	ExpiringLicenses(ctx context.Context, from, to time.Time) ([]Driver, error)
	MaintenanceDue(ctx context.Context, from, to time.Time) ([]Driver, error)
	// AssignVehicle atomically links the vehicle to the driver and flips
	// the vehicle to in-use; the vehicle must be available.
	AssignVehicle(ctx context.Context, driverID, vehicleID types.ID) error
	// UnassignVehicle reverses an assignment and frees the vehicle.
	UnassignVehicle(ctx context.Context, driverID types.ID) error
}

type Service struct {
	store   Store
	ratings ratings.Source
	now     func() time.Time
}

func NewService(store Store, rs ratings.Source) *Service {
	if rs == nil {
		rs = ratings.Static{}
	}
	return &Service{store: store, ratings: rs, now: time.Now}
}

type Statistics struct {
	TotalDrivers   int `json:"total_drivers"`
	CompletedToday int `json:"completed_today"`
	ActiveJobs     int `json:"active_jobs"`
	CompletionRate int `json:"completion_rate"`
}

type ListResult struct {
	Statistics Statistics `json:"statistics"`
	Drivers    []Driver   `json:"drivers"`
}

// List returns the filtered teams with headline statistics. Active jobs
// counts teams currently active or in transit.
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	drivers, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := Statistics{TotalDrivers: len(drivers)}
	for _, d := range drivers {
		stats.CompletedToday += d.CompletedJobs
		if d.Status == StatusActive || d.Status == StatusInTransit {
			stats.ActiveJobs++
		}
	}
	stats.CompletionRate = s.ratings.CompletionRate(stats.CompletedToday)

	return &ListResult{Statistics: stats, Drivers: drivers}, nil
}

type CreateCommand struct {
	UserID                types.ID
	TeamName              string
	Status                *Status
	JobAssignment         *string
	TruckNumber           string
	Rating                *float64
	LicenseExpiry         *types.Date
	VehicleMaintenanceDue *types.Date
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Driver, error) {
	if cmd.TeamName == "" {
		return nil, apperr.Validation("The team name field is required.")
	}
	if cmd.TruckNumber == "" {
		return nil, apperr.Validation("The truck number field is required.")
	}
	if cmd.Rating != nil && (*cmd.Rating < 0 || *cmd.Rating > 5) {
		return nil, apperr.Validation("The rating must be between 0 and 5.")
	}

	status := StatusAvailable
	if cmd.Status != nil {
		if !ValidStatus(*cmd.Status) {
			return nil, apperr.Validation("The selected status is invalid.")
		}
		status = *cmd.Status
	}

	d := &Driver{
		UserID:                cmd.UserID,
		TeamName:              cmd.TeamName,
		Status:                status,
		JobAssignment:         cmd.JobAssignment,
		TruckNumber:           cmd.TruckNumber,
		LicenseExpiry:         cmd.LicenseExpiry,
		VehicleMaintenanceDue: cmd.VehicleMaintenanceDue,
	}
	if cmd.Rating != nil {
		d.Rating = *cmd.Rating
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, d.ID)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

type UpdateCommand struct {
	UserID                *types.ID
	TeamName              *string
	Status                *Status
	JobAssignment         *string
	TruckNumber           *string
	Rating                *float64
	LicenseExpiry         *types.Date
	VehicleMaintenanceDue *types.Date
}

func (s *Service) Update(ctx context.Context, id types.ID, cmd UpdateCommand) (*Driver, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil {
		if !ValidStatus(*cmd.Status) {
			return nil, apperr.Validation("The selected status is invalid.")
		}
		d.Status = *cmd.Status
	}
	if cmd.Rating != nil {
		if *cmd.Rating < 0 || *cmd.Rating > 5 {
			return nil, apperr.Validation("The rating must be between 0 and 5.")
		}
		d.Rating = *cmd.Rating
	}
	if cmd.UserID != nil {
		d.UserID = *cmd.UserID
	}
	if cmd.TeamName != nil {
		d.TeamName = *cmd.TeamName
	}
	if cmd.JobAssignment != nil {
		d.JobAssignment = cmd.JobAssignment
	}
	if cmd.TruckNumber != nil {
		d.TruckNumber = *cmd.TruckNumber
	}
	if cmd.LicenseExpiry != nil {
		d.LicenseExpiry = cmd.LicenseExpiry
	}
	if cmd.VehicleMaintenanceDue != nil {
		d.VehicleMaintenanceDue = cmd.VehicleMaintenanceDue
	}

	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id types.ID, status Status) (*Driver, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("The selected status is invalid.")
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

type Alert struct {
	Type     string     `json:"type"`
	Severity string     `json:"severity"`
	Message  string     `json:"message"`
	DriverID types.ID   `json:"driver_id"`
	TeamName string     `json:"team_name"`
	DueDate  types.Date `json:"due_date"`
}

type AlertsResult struct {
	TotalAlerts int     `json:"total_alerts"`
	Alerts      []Alert `json:"alerts"`
}

// Alerts flags licenses expiring within 30 days and vehicle maintenance
// due within 7 days.
func (s *Service) Alerts(ctx context.Context) (*AlertsResult, error) {
	now := s.now()

	result := &AlertsResult{Alerts: []Alert{}}

	expiring, err := s.store.ExpiringLicenses(ctx, now, now.AddDate(0, 0, 30))
	if err != nil {
		return nil, err
	}
	for _, d := range expiring {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "license_expiry",
			Severity: "warning",
			Message:  d.TeamName + ": Driver license expiring soon",
			DriverID: d.ID,
			TeamName: d.TeamName,
			DueDate:  *d.LicenseExpiry,
		})
	}

	due, err := s.store.MaintenanceDue(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	for _, d := range due {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "vehicle_maintenance",
			Severity: "warning",
			Message:  d.TeamName + ": Vehicle maintenance due",
			DriverID: d.ID,
			TeamName: d.TeamName,
			DueDate:  *d.VehicleMaintenanceDue,
		})
	}

	result.TotalAlerts = len(result.Alerts)
	return result, nil
}

type Performance struct {
	TeamName string  `json:"team_name"`
	Rating   float64 `json:"rating"`
}

func (s *Service) Performance(ctx context.Context) ([]Performance, error) {
	drivers, err := s.store.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]Performance, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, Performance{TeamName: d.TeamName, Rating: d.Rating})
	}
	return out, nil
}

// AssignVehicle links an available vehicle to the driver and marks it
// in-use; the whole effect is atomic.
func (s *Service) AssignVehicle(ctx context.Context, driverID, vehicleID types.ID) (*Driver, error) {
	if err := s.store.AssignVehicle(ctx, driverID, vehicleID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, driverID)
}

// UnassignVehicle releases the driver's vehicle back to available.
func (s *Service) UnassignVehicle(ctx context.Context, driverID types.ID) (*Driver, error) {
	if err := s.store.UnassignVehicle(ctx, driverID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, driverID)
}
