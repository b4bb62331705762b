// README: Application store backed by PostgreSQL. Accept runs the whole
// acceptance cascade in one transaction with conditional updates so that
// concurrent decisions on the same request cannot both win.
package application

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db       *pgxpool.Pool
	requests *moverequest.PGStore
}

func NewStore(db *pgxpool.Pool, requests *moverequest.PGStore) *PGStore {
	return &PGStore{db: db, requests: requests}
}

const appColumns = `
	id, move_request_id, user_id, offered_price, delivery_time, message,
	negotiable, status, created_at, updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.MoveRequestID, &a.UserID, &a.OfferedPrice, &a.DeliveryTime,
		&a.Message, &a.Negotiable, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) GetMoveRequest(ctx context.Context, id types.ID) (*moverequest.MoveRequest, error) {
	return s.requests.Get(ctx, id)
}

func (s *PGStore) Get(ctx context.Context, moveRequestID, appID types.ID) (*Application, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appColumns+`
		FROM move_request_applications
		WHERE id = $1 AND move_request_id = $2`,
		appID, moveRequestID,
	)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Application not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadServices(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *PGStore) HasApplied(ctx context.Context, moveRequestID, userID types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM move_request_applications
			WHERE move_request_id = $1 AND user_id = $2
		)`,
		moveRequestID, userID,
	).Scan(&exists)
	return exists, err
}

func (s *PGStore) HasPending(ctx context.Context, moveRequestID types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM move_request_applications
			WHERE move_request_id = $1 AND status = 'pending'
		)`,
		moveRequestID,
	).Scan(&exists)
	return exists, err
}

func (s *PGStore) ListByMoveRequest(ctx context.Context, moveRequestID types.ID) ([]Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appColumns+`
		FROM move_request_applications
		WHERE move_request_id = $1
		ORDER BY created_at DESC`,
		moveRequestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range apps {
		if err := s.loadServices(ctx, &apps[i]); err != nil {
			return nil, err
		}
	}
	return apps, nil
}

// Create inserts the application and its services in one transaction. The
// (move_request_id, user_id) unique constraint is the last line of defense
// against double bids; violations surface as a conflict.
func (s *PGStore) Create(ctx context.Context, app *Application) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO move_request_applications (
			move_request_id, user_id, offered_price, delivery_time,
			message, negotiable, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		app.MoveRequestID, app.UserID, app.OfferedPrice, app.DeliveryTime,
		app.Message, app.Negotiable, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("You have already applied for this move request")
		}
		return err
	}

	for i := range app.Services {
		svc := &app.Services[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO move_request_application_services (application_id, service_name, price)
			VALUES ($1, $2, $3)
			RETURNING id`,
			app.ID, svc.ServiceName, svc.Price,
		).Scan(&svc.ID)
		if err != nil {
			return err
		}
		svc.ApplicationID = app.ID
	}

	return tx.Commit(ctx)
}

// Update writes scalar fields conditionally on status still being pending,
// then reconciles the service list: rows named by id are updated, rows
// without an id inserted, and rows not named at all deleted. A nil services
// slice leaves the list untouched.
func (s *PGStore) Update(ctx context.Context, app *Application, services []ServicePatch) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE move_request_applications
		SET offered_price = $1, delivery_time = $2, message = $3,
		    negotiable = $4, updated_at = now()
		WHERE id = $5 AND move_request_id = $6 AND status = 'pending'`,
		app.OfferedPrice, app.DeliveryTime, app.Message, app.Negotiable,
		app.ID, app.MoveRequestID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflictf("Cannot update application. Application has already been %s.", app.Status)
	}

	if services != nil {
		keep := make([]int64, 0, len(services))
		for _, svc := range services {
			if svc.ID != nil {
				tag, err := tx.Exec(ctx, `
					UPDATE move_request_application_services
					SET service_name = $1, price = $2, updated_at = now()
					WHERE id = $3 AND application_id = $4`,
					svc.ServiceName, svc.Price, *svc.ID, app.ID,
				)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return apperr.NotFound("Service not found")
				}
				keep = append(keep, int64(*svc.ID))
				continue
			}
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO move_request_application_services (application_id, service_name, price)
				VALUES ($1, $2, $3)
				RETURNING id`,
				app.ID, svc.ServiceName, svc.Price,
			).Scan(&id)
			if err != nil {
				return err
			}
			keep = append(keep, id)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM move_request_application_services
			WHERE application_id = $1 AND NOT (id = ANY($2))`,
			app.ID, keep,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Accept settles the request in one transaction: the target application is
// accepted only if still pending, every other pending application on the
// request is rejected, and the request is confirmed. Returns the user ids
// of the bulk-rejected bidders.
func (s *PGStore) Accept(ctx context.Context, moveRequestID, appID types.ID) ([]types.ID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE move_request_applications
		SET status = 'accepted', updated_at = now()
		WHERE id = $1 AND move_request_id = $2 AND status = 'pending'`,
		appID, moveRequestID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.Conflict("Application status has already been updated")
	}

	rows, err := tx.Query(ctx, `
		UPDATE move_request_applications
		SET status = 'rejected', updated_at = now()
		WHERE move_request_id = $1 AND id != $2 AND status = 'pending'
		RETURNING user_id`,
		moveRequestID, appID,
	)
	if err != nil {
		return nil, err
	}
	var rejected []types.ID
	for rows.Next() {
		var uid types.ID
		if err := rows.Scan(&uid); err != nil {
			rows.Close()
			return nil, err
		}
		rejected = append(rejected, uid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE move_requests
		SET status = 'confirmed', updated_at = now()
		WHERE id = $1`,
		moveRequestID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *PGStore) Reject(ctx context.Context, moveRequestID, appID types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE move_request_applications
		SET status = 'rejected', updated_at = now()
		WHERE id = $1 AND move_request_id = $2 AND status = 'pending'`,
		appID, moveRequestID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("Application status has already been updated")
	}
	return nil
}

func (s *PGStore) loadServices(ctx context.Context, app *Application) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, application_id, service_name, price
		FROM move_request_application_services
		WHERE application_id = $1
		ORDER BY id`,
		app.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var svc ServiceItem
		if err := rows.Scan(&svc.ID, &svc.ApplicationID, &svc.ServiceName, &svc.Price); err != nil {
			return err
		}
		app.Services = append(app.Services, svc)
	}
	return rows.Err()
}
