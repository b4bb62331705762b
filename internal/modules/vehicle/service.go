// README: Fleet management service. All vehicle surfaces are provider-only.
package vehicle

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type ListFilter struct {
	Type   string
	Status string
	Search string
}

type Store interface {
	List(ctx context.Context, f ListFilter) ([]Vehicle, error)
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id types.ID) error
	// LastCode returns the highest existing fleet code with the given
	// prefix, or "" when none exists.
	LastCode(ctx context.Context, prefix string) (string, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) guard(actor identity.Actor) error {
	if !actor.IsProvider() {
		return apperr.Forbidden("Unauthorized. Only providers can access this request.")
	}
	return nil
}

// Statistics summarizes the fleet alongside a listing.
type Statistics struct {
	TotalVehicles     int `json:"total_vehicles"`
	AvailableVehicles int `json:"available_vehicles"`
	MaintenanceAlerts int `json:"maintenance_alerts"`
	UtilizationRate   int `json:"utilization_rate"`
}

type ListResult struct {
	Statistics Statistics `json:"statistics"`
	Vehicles   []Vehicle  `json:"vehicles"`
}

// List returns the filtered fleet with aggregate statistics. Utilization is
// in-use over total, rounded to a whole percentage.
func (s *Service) List(ctx context.Context, actor identity.Actor, f ListFilter) (*ListResult, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}

	vehicles, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := Statistics{TotalVehicles: len(vehicles)}
	inUse := 0
	for _, v := range vehicles {
		switch v.Status {
		case StatusAvailable:
			stats.AvailableVehicles++
		case StatusMaintenance:
			stats.MaintenanceAlerts++
		case StatusInUse:
			inUse++
		}
	}
	if stats.TotalVehicles > 0 {
		stats.UtilizationRate = int(math.Round(float64(inUse) / float64(stats.TotalVehicles) * 100))
	}

	return &ListResult{Statistics: stats, Vehicles: vehicles}, nil
}

type CreateCommand struct {
	UserID       types.ID
	Code         *string
	Name         *string
	Type         string
	Model        string
	Color        *string
	Year         *int
	LicensePlate string
	CapacityTons *float64
	RatePerKM    *float64
	HourlyRate   *float64
	Image        *string
	Status       *Status
	Notes        *string
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, cmd CreateCommand) (*Vehicle, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	if cmd.Type == "" {
		return nil, apperr.Validation("The type field is required.")
	}
	if cmd.Model == "" {
		return nil, apperr.Validation("The model field is required.")
	}
	if cmd.LicensePlate == "" {
		return nil, apperr.Validation("The license plate field is required.")
	}
	if cmd.Year != nil && (*cmd.Year < 1900 || *cmd.Year > s.now().Year()+1) {
		return nil, apperr.Validation("The year is out of range.")
	}

	status := StatusAvailable
	if cmd.Status != nil {
		if !ValidStatus(*cmd.Status) {
			return nil, apperr.Validation("The selected status is invalid.")
		}
		status = *cmd.Status
	}

	code := cmd.Code
	if code == nil || *code == "" {
		generated, err := s.nextCode(ctx, cmd.Type)
		if err != nil {
			return nil, err
		}
		code = &generated
	}

	v := &Vehicle{
		UserID:       cmd.UserID,
		Code:         code,
		Name:         cmd.Name,
		Type:         cmd.Type,
		Model:        &cmd.Model,
		Color:        cmd.Color,
		Year:         cmd.Year,
		LicensePlate: &cmd.LicensePlate,
		CapacityTons: cmd.CapacityTons,
		RatePerKM:    cmd.RatePerKM,
		HourlyRate:   cmd.HourlyRate,
		Image:        cmd.Image,
		Status:       status,
		Notes:        cmd.Notes,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, v.ID)
}

func (s *Service) Get(ctx context.Context, actor identity.Actor, id types.ID) (*Vehicle, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

type UpdateCommand struct {
	Code         *string
	Name         *string
	Type         *string
	Model        *string
	Color        *string
	Year         *int
	LicensePlate *string
	CapacityTons *float64
	RatePerKM    *float64
	HourlyRate   *float64
	Image        *string
	Status       *Status
	Notes        *string
}

// Update patches the vehicle. A transition into in-use stamps last_used
// with today's date.
func (s *Service) Update(ctx context.Context, actor identity.Actor, id types.ID, cmd UpdateCommand) (*Vehicle, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}

	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil {
		if !ValidStatus(*cmd.Status) {
			return nil, apperr.Validation("The selected status is invalid.")
		}
		if *cmd.Status == StatusInUse && v.Status != StatusInUse {
			today := types.NewDate(s.now())
			v.LastUsed = &today
		}
		v.Status = *cmd.Status
	}
	if cmd.Year != nil {
		if *cmd.Year < 1900 || *cmd.Year > s.now().Year()+1 {
			return nil, apperr.Validation("The year is out of range.")
		}
		v.Year = cmd.Year
	}
	if cmd.Code != nil {
		v.Code = cmd.Code
	}
	if cmd.Name != nil {
		v.Name = cmd.Name
	}
	if cmd.Type != nil {
		v.Type = *cmd.Type
	}
	if cmd.Model != nil {
		v.Model = cmd.Model
	}
	if cmd.Color != nil {
		v.Color = cmd.Color
	}
	if cmd.LicensePlate != nil {
		v.LicensePlate = cmd.LicensePlate
	}
	if cmd.CapacityTons != nil {
		v.CapacityTons = cmd.CapacityTons
	}
	if cmd.RatePerKM != nil {
		v.RatePerKM = cmd.RatePerKM
	}
	if cmd.HourlyRate != nil {
		v.HourlyRate = cmd.HourlyRate
	}
	if cmd.Image != nil {
		v.Image = cmd.Image
	}
	if cmd.Notes != nil {
		v.Notes = cmd.Notes
	}

	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, id types.ID, status Status) (*Vehicle, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("The selected status is invalid.")
	}
	return s.Update(ctx, actor, id, UpdateCommand{Status: &status})
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id types.ID) error {
	if err := s.guard(actor); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

type Alert struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	VehicleID   types.ID `json:"vehicle_id"`
	VehicleName *string  `json:"vehicle_name"`
	Code        *string  `json:"custom_vehicle_id"`
}

type AlertsResult struct {
	TotalAlerts int     `json:"total_alerts"`
	Alerts      []Alert `json:"alerts"`
}

// Alerts flags vehicles in maintenance (warning) and retired vehicles
// (info).
func (s *Service) Alerts(ctx context.Context, actor identity.Actor) (*AlertsResult, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}

	vehicles, err := s.store.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	result := &AlertsResult{Alerts: []Alert{}}
	add := func(v Vehicle, typ, severity, what string) {
		name, code := "", ""
		if v.Name != nil {
			name = *v.Name
		}
		if v.Code != nil {
			code = *v.Code
		}
		result.Alerts = append(result.Alerts, Alert{
			Type:        typ,
			Severity:    severity,
			Message:     fmt.Sprintf("%s (%s): %s", name, code, what),
			VehicleID:   v.ID,
			VehicleName: v.Name,
			Code:        v.Code,
		})
	}
	for _, v := range vehicles {
		if v.Status == StatusMaintenance {
			add(v, "maintenance", "warning", "Vehicle in maintenance")
		}
	}
	for _, v := range vehicles {
		if v.Status == StatusRetired {
			add(v, "retired", "info", "Vehicle retired")
		}
	}
	result.TotalAlerts = len(result.Alerts)
	return result, nil
}

type TypePerformance struct {
	Type          string  `json:"type"`
	Rating        float64 `json:"rating"`
	TotalVehicles int     `json:"total_vehicles"`
	Available     int     `json:"available"`
}

// Performance rates each vehicle type by availability on a 5-point scale.
func (s *Service) Performance(ctx context.Context, actor identity.Actor) ([]TypePerformance, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}

	vehicles, err := s.store.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	byType := map[string]*TypePerformance{}
	for _, v := range vehicles {
		p, ok := byType[v.Type]
		if !ok {
			p = &TypePerformance{Type: v.Type}
			byType[v.Type] = p
		}
		p.TotalVehicles++
		if v.Status == StatusAvailable {
			p.Available++
		}
	}

	out := make([]TypePerformance, 0, len(byType))
	for _, p := range byType {
		if p.TotalVehicles > 0 {
			p.Rating = math.Round(float64(p.Available)/float64(p.TotalVehicles)*5*10) / 10
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// nextCode derives a fleet code from the type's initials and the highest
// existing sequence, e.g. "Medium Truck" -> "MT - 001".
func (s *Service) nextCode(ctx context.Context, vehicleType string) (string, error) {
	var prefix strings.Builder
	for _, word := range strings.Fields(vehicleType) {
		r := []rune(word)[0]
		prefix.WriteRune(unicode.ToUpper(r))
	}

	last, err := s.store.LastCode(ctx, prefix.String())
	if err != nil {
		return "", err
	}

	number := 1
	if last != "" {
		i := len(last)
		for i > 0 && last[i-1] >= '0' && last[i-1] <= '9' {
			i--
		}
		if i < len(last) {
			n, err := strconv.Atoi(last[i:])
			if err == nil {
				number = n + 1
			}
		}
	}

	return fmt.Sprintf("%s - %03d", prefix.String(), number), nil
}
