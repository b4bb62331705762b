// README: Fleet service tests (code generation, statistics, status effects).
package vehicle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type memStore struct {
	mu       sync.Mutex
	nextID   types.ID
	vehicles map[types.ID]*Vehicle
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, vehicles: make(map[types.ID]*Vehicle)}
}

func (m *memStore) List(_ context.Context, f ListFilter) ([]Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Vehicle
	for id := types.ID(1); id < m.nextID; id++ {
		v, ok := m.vehicles[id]
		if !ok {
			continue
		}
		if f.Type != "" && v.Type != f.Type {
			continue
		}
		if f.Status != "" && string(v.Status) != f.Status {
			continue
		}
		if f.Search != "" {
			name := ""
			if v.Name != nil {
				name = *v.Name
			}
			if !strings.Contains(strings.ToLower(name), strings.ToLower(f.Search)) {
				continue
			}
		}
		out = append(out, *v)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, apperr.NotFound("Vehicle not found")
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vehicles {
		if existing.LicensePlate != nil && v.LicensePlate != nil && *existing.LicensePlate == *v.LicensePlate {
			return apperr.Validation("The license plate has already been taken.")
		}
	}
	v.ID = m.nextID
	m.nextID++
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, v *Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; !ok {
		return apperr.NotFound("Vehicle not found")
	}
	cp := *v
	cp.UpdatedAt = time.Now()
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return apperr.NotFound("Vehicle not found")
	}
	delete(m.vehicles, id)
	return nil
}

func (m *memStore) LastCode(_ context.Context, prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := ""
	for _, v := range m.vehicles {
		if v.Code == nil || !strings.HasPrefix(*v.Code, prefix) {
			continue
		}
		if *v.Code > last {
			last = *v.Code
		}
	}
	return last, nil
}

var provider = identity.Actor{UserID: 2, Role: identity.RoleProvider}

func fixedNow(svc *Service, t time.Time) {
	svc.now = func() time.Time { return t }
}

func mustCreate(t *testing.T, svc *Service, cmd CreateCommand) *Vehicle {
	t.Helper()
	if cmd.Type == "" {
		cmd.Type = "Medium Truck"
	}
	if cmd.Model == "" {
		cmd.Model = "Isuzu NPR"
	}
	cmd.UserID = provider.UserID
	v, err := svc.Create(context.Background(), provider, cmd)
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func TestGuardRejectsCustomer(t *testing.T) {
	svc := NewService(newMemStore())
	customer := identity.Actor{UserID: 1, Role: identity.RoleCustomer}

	_, err := svc.List(context.Background(), customer, ListFilter{})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "Unauthorized. Only providers can access this request." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCodeGeneration(t *testing.T) {
	svc := NewService(newMemStore())

	v1 := mustCreate(t, svc, CreateCommand{LicensePlate: "AA-111"})
	if v1.Code == nil || *v1.Code != "MT - 001" {
		t.Fatalf("expected MT - 001, got %v", v1.Code)
	}

	v2 := mustCreate(t, svc, CreateCommand{LicensePlate: "AA-112"})
	if v2.Code == nil || *v2.Code != "MT - 002" {
		t.Fatalf("expected MT - 002, got %v", v2.Code)
	}

	// A different type starts its own sequence.
	v3 := mustCreate(t, svc, CreateCommand{Type: "Cargo Van", LicensePlate: "AA-113"})
	if v3.Code == nil || *v3.Code != "CV - 001" {
		t.Fatalf("expected CV - 001, got %v", v3.Code)
	}

	// An explicit code is kept as-is.
	code := "CUSTOM-9"
	v4 := mustCreate(t, svc, CreateCommand{Code: &code, LicensePlate: "AA-114"})
	if v4.Code == nil || *v4.Code != "CUSTOM-9" {
		t.Fatalf("expected CUSTOM-9, got %v", v4.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore())
	fixedNow(svc, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	year := 1899
	cases := []struct {
		name string
		cmd  CreateCommand
	}{
		{"missing type", CreateCommand{Model: "X", LicensePlate: "P-1"}},
		{"missing model", CreateCommand{Type: "Van", LicensePlate: "P-1"}},
		{"missing plate", CreateCommand{Type: "Van", Model: "X"}},
		{"year too old", CreateCommand{Type: "Van", Model: "X", LicensePlate: "P-1", Year: &year}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cmd.UserID = provider.UserID
			_, err := svc.Create(context.Background(), provider, tc.cmd)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	// Next year's models are accepted.
	nextYear := 2027
	mustCreate(t, svc, CreateCommand{LicensePlate: "P-2", Year: &nextYear})
}

func TestListStatistics(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	statuses := []Status{StatusAvailable, StatusAvailable, StatusInUse, StatusMaintenance}
	for i, st := range statuses {
		st := st
		mustCreate(t, svc, CreateCommand{
			LicensePlate: "PL-" + string(rune('A'+i)),
			Status:       &st,
		})
	}

	result, err := svc.List(context.Background(), provider, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := Statistics{TotalVehicles: 4, AvailableVehicles: 2, MaintenanceAlerts: 1, UtilizationRate: 25}
	if result.Statistics != want {
		t.Fatalf("unexpected statistics: %+v", result.Statistics)
	}
}

func TestUpdateInUseStampsLastUsed(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	today := time.Date(2026, time.August, 29, 15, 0, 0, 0, time.UTC)
	fixedNow(svc, today)

	v := mustCreate(t, svc, CreateCommand{LicensePlate: "PL-1"})
	if v.LastUsed != nil {
		t.Fatalf("fresh vehicle should have no last_used, got %v", v.LastUsed)
	}

	inUse := StatusInUse
	updated, err := svc.Update(context.Background(), provider, v.ID, UpdateCommand{Status: &inUse})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.LastUsed == nil || updated.LastUsed.String() != "2026-08-29" {
		t.Fatalf("expected last_used 2026-08-29, got %v", updated.LastUsed)
	}

	// A second in-use update keeps the original stamp.
	later := time.Date(2026, time.September, 2, 9, 0, 0, 0, time.UTC)
	fixedNow(svc, later)
	again, err := svc.Update(context.Background(), provider, v.ID, UpdateCommand{Status: &inUse})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if again.LastUsed == nil || again.LastUsed.String() != "2026-08-29" {
		t.Fatalf("expected last_used unchanged, got %v", again.LastUsed)
	}
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc := NewService(newMemStore())
	v := mustCreate(t, svc, CreateCommand{LicensePlate: "PL-1"})

	_, err := svc.UpdateStatus(context.Background(), provider, v.ID, "parked")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAlerts(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	name := "Old Hauler"
	maintenance := StatusMaintenance
	retired := StatusRetired
	mustCreate(t, svc, CreateCommand{LicensePlate: "PL-1"})
	mustCreate(t, svc, CreateCommand{Name: &name, LicensePlate: "PL-2", Status: &maintenance})
	mustCreate(t, svc, CreateCommand{LicensePlate: "PL-3", Status: &retired})

	result, err := svc.Alerts(context.Background(), provider)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if result.TotalAlerts != 2 {
		t.Fatalf("expected 2 alerts, got %d", result.TotalAlerts)
	}
	if result.Alerts[0].Type != "maintenance" || result.Alerts[0].Severity != "warning" {
		t.Fatalf("unexpected first alert: %+v", result.Alerts[0])
	}
	if !strings.Contains(result.Alerts[0].Message, "Old Hauler") || !strings.Contains(result.Alerts[0].Message, "Vehicle in maintenance") {
		t.Fatalf("unexpected maintenance message: %q", result.Alerts[0].Message)
	}
	if result.Alerts[1].Type != "retired" || result.Alerts[1].Severity != "info" {
		t.Fatalf("unexpected second alert: %+v", result.Alerts[1])
	}
}

func TestPerformanceByType(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	inUse := StatusInUse
	mustCreate(t, svc, CreateCommand{Type: "Cargo Van", LicensePlate: "PL-1"})
	mustCreate(t, svc, CreateCommand{Type: "Cargo Van", LicensePlate: "PL-2", Status: &inUse})
	mustCreate(t, svc, CreateCommand{Type: "Cargo Van", LicensePlate: "PL-3", Status: &inUse})
	mustCreate(t, svc, CreateCommand{Type: "Medium Truck", LicensePlate: "PL-4"})

	perf, err := svc.Performance(context.Background(), provider)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if len(perf) != 2 {
		t.Fatalf("expected 2 types, got %d", len(perf))
	}
	// Sorted by type name: Cargo Van first. 1 of 3 available -> 1.7 of 5.
	if perf[0].Type != "Cargo Van" || perf[0].Rating != 1.7 || perf[0].TotalVehicles != 3 || perf[0].Available != 1 {
		t.Fatalf("unexpected cargo van perf: %+v", perf[0])
	}
	if perf[1].Type != "Medium Truck" || perf[1].Rating != 5 {
		t.Fatalf("unexpected medium truck perf: %+v", perf[1])
	}
}

func TestDeleteMissingVehicle(t *testing.T) {
	svc := NewService(newMemStore())
	err := svc.Delete(context.Background(), provider, 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
