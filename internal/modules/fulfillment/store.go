// README: Assignment store backed by PostgreSQL. Assign locks the request
// and the driver rows for the duration of the precondition checks.
package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/driver"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db       *pgxpool.Pool
	requests *moverequest.PGStore
	drivers  *driver.PGStore
}

func NewStore(db *pgxpool.Pool, requests *moverequest.PGStore, drivers *driver.PGStore) *PGStore {
	return &PGStore{db: db, requests: requests, drivers: drivers}
}

func (s *PGStore) GetMoveRequest(ctx context.Context, id types.ID) (*moverequest.MoveRequest, error) {
	return s.requests.Get(ctx, id)
}

func (s *PGStore) GetDriver(ctx context.Context, id types.ID) (*driver.Driver, error) {
	return s.drivers.Get(ctx, id)
}

func (s *PGStore) Assign(ctx context.Context, providerID, moveRequestID, driverID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var (
		status           moverequest.Status
		assignedDriverID *int64
		requestCreatedAt time.Time
	)
	err = tx.QueryRow(ctx, `
		SELECT status, driver_id, created_at
		FROM move_requests
		WHERE id = $1
		FOR UPDATE`,
		moveRequestID,
	).Scan(&status, &assignedDriverID, &requestCreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Move request not found")
	}
	if err != nil {
		return err
	}

	if status != moverequest.StatusConfirmed {
		return apperr.Precondition("Cannot assign driver. Move request must be in confirmed status.")
	}

	var accepted bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM move_request_applications
			WHERE move_request_id = $1 AND user_id = $2 AND status = 'accepted'
		)`,
		moveRequestID, providerID,
	).Scan(&accepted)
	if err != nil {
		return err
	}
	if !accepted {
		return apperr.Forbidden("Unauthorized. You can only assign drivers to move requests where your application has been accepted.")
	}

	var driverStatus driver.Status
	err = tx.QueryRow(ctx, `
		SELECT status FROM drivers
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`,
		driverID, providerID,
	).Scan(&driverStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Driver not found or does not belong to your organization.")
	}
	if err != nil {
		return err
	}
	if driverStatus != driver.StatusAvailable {
		return apperr.Precondition("Driver is not available. Current status: " + string(driverStatus))
	}

	if assignedDriverID != nil {
		return apperr.Conflict("A driver has already been assigned to this move request.")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE move_requests
		SET driver_id = $1, status = 'in-progress', updated_at = now()
		WHERE id = $2`,
		driverID, moveRequestID,
	); err != nil {
		return err
	}

	jobCode := moverequest.JobCode(moveRequestID, requestCreatedAt)
	if _, err := tx.Exec(ctx, `
		UPDATE drivers
		SET status = 'in-transit', job_assignment = $1, updated_at = now()
		WHERE id = $2`,
		jobCode, driverID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
