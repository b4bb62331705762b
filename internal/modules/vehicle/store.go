// README: Vehicle store backed by PostgreSQL.
package vehicle

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
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db    *pgxpool.Pool
	users user.Directory
}

func NewStore(db *pgxpool.Pool, users user.Directory) *PGStore {
	return &PGStore{db: db, users: users}
}

const vehicleColumns = `
	id, user_id, vehicle_id, name, type, model, color, year, license_plate,
	capacity_tons, rate_per_km, hourly_rate, image, last_used, status, notes,
	created_at, updated_at`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	var lastUsed *time.Time
	err := row.Scan(
		&v.ID, &v.UserID, &v.Code, &v.Name, &v.Type, &v.Model, &v.Color, &v.Year,
		&v.LicensePlate, &v.CapacityTons, &v.RatePerKM, &v.HourlyRate, &v.Image,
		&lastUsed, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastUsed != nil {
		d := types.NewDate(*lastUsed)
		v.LastUsed = &d
	}
	return &v, nil
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Type != "" {
		query += ` AND type = ` + arg(f.Type)
	}
	if f.Status != "" {
		query += ` AND status = ` + arg(f.Status)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR vehicle_id ILIKE ` + p +
			` OR model ILIKE ` + p + ` OR license_plate ILIKE ` + p + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range vehicles {
		if err := s.loadOwner(ctx, &vehicles[i]); err != nil {
			return nil, err
		}
	}
	return vehicles, nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Vehicle not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadOwner(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *PGStore) Create(ctx context.Context, v *Vehicle) error {
	var lastUsed *time.Time
	if v.LastUsed != nil {
		lastUsed = &v.LastUsed.Time
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO vehicles (
			user_id, vehicle_id, name, type, model, color, year, license_plate,
			capacity_tons, rate_per_km, hourly_rate, image, last_used, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		v.UserID, v.Code, v.Name, v.Type, v.Model, v.Color, v.Year, v.LicensePlate,
		v.CapacityTons, v.RatePerKM, v.HourlyRate, v.Image, lastUsed, v.Status, v.Notes,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return translateUnique(err)
}

func (s *PGStore) Update(ctx context.Context, v *Vehicle) error {
	var lastUsed *time.Time
	if v.LastUsed != nil {
		lastUsed = &v.LastUsed.Time
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET vehicle_id = $1, name = $2, type = $3, model = $4, color = $5,
		    year = $6, license_plate = $7, capacity_tons = $8, rate_per_km = $9,
		    hourly_rate = $10, image = $11, last_used = $12, status = $13,
		    notes = $14, updated_at = now()
		WHERE id = $15`,
		v.Code, v.Name, v.Type, v.Model, v.Color, v.Year, v.LicensePlate,
		v.CapacityTons, v.RatePerKM, v.HourlyRate, v.Image, lastUsed, v.Status,
		v.Notes, v.ID,
	)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Vehicle not found")
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Vehicle not found")
	}
	return nil
}

func (s *PGStore) LastCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := s.db.QueryRow(ctx, `
		SELECT vehicle_id FROM vehicles
		WHERE vehicle_id LIKE $1 || '%'
		ORDER BY vehicle_id DESC
		LIMIT 1`,
		prefix,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, err
}

func (s *PGStore) loadOwner(ctx context.Context, v *Vehicle) error {
	u, err := s.users.Get(ctx, v.UserID)
	if err != nil {
		return err
	}
	v.Owner = u
	return nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "vehicles_license_plate_key":
			return apperr.Validation("The license plate has already been taken.")
		case "vehicles_vehicle_id_key":
			return apperr.Validation("The vehicle id has already been taken.")
		}
		return apperr.Conflict("Vehicle already exists")
	}
	return err
}
