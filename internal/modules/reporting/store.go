// README: Reporting store backed by PostgreSQL. Queries join accepted
// applications to their move requests; user records are resolved through
// the directory.
package reporting

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type PGStore struct {
	db       *pgxpool.Pool
	requests *moverequest.PGStore
	users    user.Directory
}

func NewStore(db *pgxpool.Pool, requests *moverequest.PGStore, users user.Directory) *PGStore {
	return &PGStore{db: db, requests: requests, users: users}
}

func (s *PGStore) ProviderJobs(ctx context.Context, providerID types.ID, f JobsFilter) ([]Job, error) {
	query := `
		SELECT a.id, a.offered_price, a.delivery_time, a.move_request_id
		FROM move_request_applications a
		JOIN move_requests mr ON mr.id = a.move_request_id
		JOIN users u ON u.id = mr.user_id
		WHERE a.user_id = $1 AND a.status = 'accepted'`
	args := []any{providerID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != "" {
		query += ` AND mr.status = ` + arg(f.Status)
	}
	if f.JobID != nil {
		query += ` AND mr.id = ` + arg(*f.JobID)
	}
	if f.CustomerName != "" {
		query += ` AND u.name ILIKE ` + arg("%"+f.CustomerName+"%")
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		job           Job
		moveRequestID types.ID
	}
	var raw []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.job.ApplicationID, &r.job.OfferedPrice, &r.job.DeliveryTime, &r.moveRequestID); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(raw))
	for _, r := range raw {
		mr, err := s.requests.Get(ctx, r.moveRequestID)
		if err != nil {
			return nil, err
		}
		r.job.Request = *mr
		customer, err := s.users.Get(ctx, mr.UserID)
		if err != nil {
			return nil, err
		}
		r.job.Customer = customer
		jobs = append(jobs, r.job)
	}
	return jobs, nil
}

func (s *PGStore) CustomerMoves(ctx context.Context, customerID types.ID) ([]Move, error) {
	rows, err := s.db.Query(ctx, `
		SELECT mr.id, a.offered_price, a.user_id
		FROM move_requests mr
		JOIN move_request_applications a ON a.move_request_id = mr.id AND a.status = 'accepted'
		WHERE mr.user_id = $1
		ORDER BY mr.created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		moveRequestID types.ID
		offeredPrice  float64
		providerID    types.ID
	}
	var raw []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.moveRequestID, &r.offeredPrice, &r.providerID); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	moves := make([]Move, 0, len(raw))
	for _, r := range raw {
		mr, err := s.requests.Get(ctx, r.moveRequestID)
		if err != nil {
			return nil, err
		}
		provider, err := s.users.Get(ctx, r.providerID)
		if err != nil {
			return nil, err
		}
		moves = append(moves, Move{Request: *mr, OfferedPrice: r.offeredPrice, Provider: provider})
	}
	return moves, nil
}
