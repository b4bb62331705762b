// README: Move request store backed by PostgreSQL.
package moverequest

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const requestColumns = `
	id, user_id, driver_id, move_type, vehicle_type, move_title,
	pickup_address, drop_address, move_date, move_time::text, property_size,
	budget_min, budget_max, estimated_delivery_date, description, status,
	created_at, updated_at`

func scanRequest(row pgx.Row) (*MoveRequest, error) {
	var mr MoveRequest
	var driverID *int64
	var moveDate time.Time
	var moveTime string
	var estDelivery *time.Time

	err := row.Scan(
		&mr.ID, &mr.UserID, &driverID, &mr.MoveType, &mr.VehicleType, &mr.MoveTitle,
		&mr.PickupAddress, &mr.DropAddress, &moveDate, &moveTime, &mr.PropertySize,
		&mr.BudgetMin, &mr.BudgetMax, &estDelivery, &mr.Description, &mr.Status,
		&mr.CreatedAt, &mr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID != nil {
		d := types.ID(*driverID)
		mr.DriverID = &d
	}
	mr.MoveDate = types.NewDate(moveDate)
	mr.MoveTime = types.TimeOfDay(moveTime)
	if estDelivery != nil {
		d := types.NewDate(*estDelivery)
		mr.EstimatedDeliveryDate = &d
	}
	return &mr, nil
}

// Create inserts the request and its items in one transaction and fills in
// the generated ids and timestamps.
func (s *PGStore) Create(ctx context.Context, mr *MoveRequest) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var estDelivery *time.Time
	if mr.EstimatedDeliveryDate != nil {
		estDelivery = &mr.EstimatedDeliveryDate.Time
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO move_requests (
			user_id, move_type, vehicle_type, move_title,
			pickup_address, drop_address, move_date, move_time, property_size,
			budget_min, budget_max, estimated_delivery_date, description, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		int64(mr.UserID), mr.MoveType, mr.VehicleType, mr.MoveTitle,
		mr.PickupAddress, mr.DropAddress, mr.MoveDate.Time, string(mr.MoveTime), mr.PropertySize,
		mr.BudgetMin, mr.BudgetMax, estDelivery, mr.Description, string(mr.Status),
	).Scan(&mr.ID, &mr.CreatedAt, &mr.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range mr.Items {
		it := &mr.Items[i]
		it.MoveRequestID = mr.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO move_request_items (move_request_id, item_name, quantity, notes)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			int64(mr.ID), it.ItemName, it.Quantity, it.Notes,
		).Scan(&it.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*MoveRequest, error) {
	row := s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM move_requests WHERE id = $1`, int64(id))
	mr, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Move request not found")
	}
	if err != nil {
		return nil, err
	}

	items, err := s.itemsFor(ctx, []types.ID{id})
	if err != nil {
		return nil, err
	}
	mr.Items = items[id]
	return mr, nil
}

func (s *PGStore) ListPending(ctx context.Context, f BrowseFilter) ([]MoveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM move_requests WHERE status = 'pending'`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		query += ` AND (move_title ILIKE ` + p + ` OR move_type ILIKE ` + p + ` OR description ILIKE ` + p + `)`
	}
	if f.Location != "" {
		p := arg("%" + f.Location + "%")
		query += ` AND (pickup_address ILIKE ` + p + ` OR drop_address ILIKE ` + p + `)`
	}
	if f.VehicleType != "" {
		query += ` AND move_type = ` + arg(f.VehicleType)
	}
	if f.BudgetMin != nil {
		query += ` AND budget_max >= ` + arg(*f.BudgetMin)
	}
	if f.BudgetMax != nil {
		query += ` AND budget_min <= ` + arg(*f.BudgetMax)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoveRequest
	var ids []types.ID
	for rows.Next() {
		mr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mr)
		ids = append(ids, mr.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *PGStore) WonStatusCounts(ctx context.Context, providerID types.ID) (StatusCounts, error) {
	rows, err := s.db.Query(ctx, `
		SELECT mr.status, COUNT(*)
		FROM move_requests mr
		JOIN move_request_applications a ON a.move_request_id = mr.id
		WHERE a.user_id = $1 AND a.status = 'accepted'
		GROUP BY mr.status`, int64(providerID),
	)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var c StatusCounts
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, err
		}
		c.Total += count
		switch Status(status) {
		case StatusConfirmed:
			c.Confirmed = count
		case StatusInProgress:
			c.InProgress = count
		case StatusCompleted:
			c.Completed = count
		case StatusRejected:
			c.Rejected = count
		}
	}
	return c, rows.Err()
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, status Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE move_requests SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), int64(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Move request not found")
	}
	return nil
}

func (s *PGStore) HasAcceptedApplication(ctx context.Context, moveRequestID, userID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM move_request_applications
			WHERE move_request_id = $1 AND user_id = $2 AND status = 'accepted'
		)`, int64(moveRequestID), int64(userID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PGStore) itemsFor(ctx context.Context, ids []types.ID) (map[types.ID][]Item, error) {
	out := make(map[types.ID][]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, move_request_id, item_name, quantity, notes
		FROM move_request_items
		WHERE move_request_id = ANY($1)
		ORDER BY id`, raw,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.MoveRequestID, &it.ItemName, &it.Quantity, &it.Notes); err != nil {
			return nil, err
		}
		out[it.MoveRequestID] = append(out[it.MoveRequestID], it)
	}
	return out, rows.Err()
}
