// README: Driver store backed by PostgreSQL. Vehicle assignment runs as a
// transaction with a row lock on the vehicle so two drivers cannot claim it
// at once.
package driver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/vehicle"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db       *pgxpool.Pool
	users    user.Directory
	vehicles *vehicle.PGStore
}

func NewStore(db *pgxpool.Pool, users user.Directory, vehicles *vehicle.PGStore) *PGStore {
	return &PGStore{db: db, users: users, vehicles: vehicles}
}

const driverColumns = `
	d.id, d.user_id, d.team_name, d.status, d.job_assignment, d.truck_number,
	d.rating, d.license_expiry, d.vehicle_maintenance_due, d.completed_jobs,
	d.assigned_vehicle_id, d.created_at, d.updated_at`

func scanDriver(row pgx.Row) (*Driver, error) {
	var d Driver
	var licenseExpiry, maintenanceDue *time.Time
	var assignedVehicleID *int64
	err := row.Scan(
		&d.ID, &d.UserID, &d.TeamName, &d.Status, &d.JobAssignment, &d.TruckNumber,
		&d.Rating, &licenseExpiry, &maintenanceDue, &d.CompletedJobs,
		&assignedVehicleID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if licenseExpiry != nil {
		t := types.NewDate(*licenseExpiry)
		d.LicenseExpiry = &t
	}
	if maintenanceDue != nil {
		t := types.NewDate(*maintenanceDue)
		d.VehicleMaintenanceDue = &t
	}
	if assignedVehicleID != nil {
		id := types.ID(*assignedVehicleID)
		d.AssignedVehicleID = &id
	}
	return &d, nil
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM drivers d
		JOIN users u ON u.id = d.user_id
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != "" {
		query += ` AND d.status = ` + arg(f.Status)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		query += ` AND (d.team_name ILIKE ` + p + ` OR d.truck_number ILIKE ` + p +
			` OR u.name ILIKE ` + p + `)`
	}
	query += ` ORDER BY d.created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range drivers {
		if err := s.loadLeader(ctx, &drivers[i]); err != nil {
			return nil, err
		}
	}
	return drivers, nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.id = $1`, id)
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Driver not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadLeader(ctx, d); err != nil {
		return nil, err
	}
	if d.AssignedVehicleID != nil {
		v, err := s.vehicles.Get(ctx, *d.AssignedVehicleID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		d.AssignedVehicle = v
	}
	return d, nil
}

func (s *PGStore) Create(ctx context.Context, d *Driver) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO drivers (
			user_id, team_name, status, job_assignment, truck_number, rating,
			license_expiry, vehicle_maintenance_due
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, completed_jobs, created_at, updated_at`,
		d.UserID, d.TeamName, d.Status, d.JobAssignment, d.TruckNumber, d.Rating,
		dateArg(d.LicenseExpiry), dateArg(d.VehicleMaintenanceDue),
	).Scan(&d.ID, &d.CompletedJobs, &d.CreatedAt, &d.UpdatedAt)
	return translateDriverUnique(err)
}

func (s *PGStore) Update(ctx context.Context, d *Driver) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET user_id = $1, team_name = $2, status = $3, job_assignment = $4,
		    truck_number = $5, rating = $6, license_expiry = $7,
		    vehicle_maintenance_due = $8, updated_at = now()
		WHERE id = $9`,
		d.UserID, d.TeamName, d.Status, d.JobAssignment, d.TruckNumber, d.Rating,
		dateArg(d.LicenseExpiry), dateArg(d.VehicleMaintenanceDue), d.ID,
	)
	if err != nil {
		return translateDriverUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Driver not found")
	}
	return nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, status Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Driver not found")
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Driver not found")
	}
	return nil
}

func (s *PGStore) ExpiringLicenses(ctx context.Context, from, to time.Time) ([]Driver, error) {
	return s.between(ctx, "license_expiry", from, to)
}

func (s *PGStore) MaintenanceDue(ctx context.Context, from, to time.Time) ([]Driver, error) {
	return s.between(ctx, "vehicle_maintenance_due", from, to)
}

func (s *PGStore) between(ctx context.Context, column string, from, to time.Time) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+driverColumns+`
		FROM drivers d
		WHERE d.`+column+` IS NOT NULL
		  AND d.`+column+` >= $1 AND d.`+column+` <= $2
		ORDER BY d.`+column,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	return drivers, rows.Err()
}

func (s *PGStore) AssignVehicle(ctx context.Context, driverID, vehicleID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, driverID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Driver not found")
	}

	var status vehicle.Status
	err = tx.QueryRow(ctx, `SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Vehicle not found")
	}
	if err != nil {
		return err
	}
	if status != vehicle.StatusAvailable {
		return apperr.Conflict("Vehicle is not available for assignment")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE drivers SET assigned_vehicle_id = $1, updated_at = now() WHERE id = $2`,
		vehicleID, driverID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE vehicles SET status = 'in-use', last_used = now(), updated_at = now() WHERE id = $1`,
		vehicleID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PGStore) UnassignVehicle(ctx context.Context, driverID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var vehicleID *int64
	err = tx.QueryRow(ctx, `
		SELECT assigned_vehicle_id FROM drivers WHERE id = $1 FOR UPDATE`,
		driverID,
	).Scan(&vehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Driver not found")
	}
	if err != nil {
		return err
	}
	if vehicleID == nil {
		return apperr.Conflict("No vehicle assigned to this driver")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE drivers SET assigned_vehicle_id = NULL, updated_at = now() WHERE id = $1`,
		driverID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE vehicles SET status = 'available', updated_at = now() WHERE id = $1`,
		*vehicleID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PGStore) loadLeader(ctx context.Context, d *Driver) error {
	u, err := s.users.Get(ctx, d.UserID)
	if err != nil {
		return err
	}
	d.TeamLeader = u
	return nil
}

func dateArg(d *types.Date) *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

func translateDriverUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Validation("The truck number has already been taken.")
	}
	return err
}
