// README: Dashboard aggregations: provider active jobs, customer active
// moves with month-over-month deltas, and customer move history.
package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/ratings"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type JobsFilter struct {
	Status       string
	JobID        *types.ID
	CustomerName string
}

type Store interface {
	// ProviderJobs returns the provider's accepted applications joined to
	// their move requests, newest first.
	ProviderJobs(ctx context.Context, providerID types.ID, f JobsFilter) ([]Job, error)
	// CustomerMoves returns every move request of the customer that holds
	// an accepted application, any status, newest first.
	CustomerMoves(ctx context.Context, customerID types.ID) ([]Move, error)
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

type JobStatistics struct {
	TotalActiveJobs int `json:"total_active_jobs"`
	CompletedToday  int `json:"completed_today"`
	PendingJobs     int `json:"pending_jobs"`
	UrgentJobs      int `json:"urgent_jobs"`
}

type JobDistribution struct {
	Confirmed  int `json:"confirmed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type JobCard struct {
	JobID          string             `json:"job_id"`
	MoveRequestID  types.ID           `json:"move_request_id"`
	ApplicationID  types.ID           `json:"application_id"`
	Status         moverequest.Status `json:"status"`
	MoveDate       types.Date         `json:"move_date"`
	Customer       *CustomerInfo      `json:"customer"`
	PickupLocation string             `json:"pickup_location"`
	DropLocation   string             `json:"drop_location"`
	MoveTime       types.TimeOfDay    `json:"move_time"`
	VehicleType    string             `json:"vehicle_type"`
	OfferedPrice   float64            `json:"offered_price"`
	DeliveryTime   string             `json:"delivery_time"`
	CreatedAt      time.Time          `json:"created_at"`
}

type CustomerInfo struct {
	ID           types.ID `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        *string  `json:"phone"`
	ProfileImage *string  `json:"profile_image"`
}

type ActiveJobsResult struct {
	Statistics      JobStatistics   `json:"statistics"`
	JobDistribution JobDistribution `json:"job_distribution"`
	Jobs            []JobCard       `json:"jobs"`
}

// ActiveJobs builds the provider work board: won jobs with headline
// statistics and a per-status distribution. Urgent means the move date is
// within two days and the job is not yet terminal.
func (s *Service) ActiveJobs(ctx context.Context, actor identity.Actor, f JobsFilter) (*ActiveJobsResult, error) {
	if !actor.IsProvider() {
		return nil, apperr.Forbidden("Unauthorized. Only providers can view active jobs.")
	}

	jobs, err := s.store.ProviderJobs(ctx, actor.UserID, f)
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	urgentCutoff := now.AddDate(0, 0, 2)

	result := &ActiveJobsResult{Jobs: []JobCard{}}
	for _, j := range jobs {
		mr := j.Request
		terminal := mr.Status == moverequest.StatusCompleted || mr.Status == moverequest.StatusRejected
		if !terminal {
			result.Statistics.TotalActiveJobs++
		}
		if mr.Status == moverequest.StatusCompleted && !mr.UpdatedAt.Before(startOfDay) {
			result.Statistics.CompletedToday++
		}
		if mr.Status == moverequest.StatusPending {
			result.Statistics.PendingJobs++
		}
		if !terminal && !mr.MoveDate.After(urgentCutoff) {
			result.Statistics.UrgentJobs++
		}

		switch mr.Status {
		case moverequest.StatusConfirmed:
			result.JobDistribution.Confirmed++
		case moverequest.StatusPending:
			result.JobDistribution.Pending++
		case moverequest.StatusInProgress:
			result.JobDistribution.InProgress++
		case moverequest.StatusCompleted:
			result.JobDistribution.Completed++
		}

		card := JobCard{
			JobID:          moverequest.JobCode(mr.ID, mr.CreatedAt),
			MoveRequestID:  mr.ID,
			ApplicationID:  j.ApplicationID,
			Status:         mr.Status,
			MoveDate:       mr.MoveDate,
			PickupLocation: mr.PickupAddress,
			DropLocation:   mr.DropAddress,
			MoveTime:       mr.MoveTime,
			VehicleType:    mr.VehicleType,
			OfferedPrice:   j.OfferedPrice,
			DeliveryTime:   j.DeliveryTime,
			CreatedAt:      mr.CreatedAt,
		}
		if j.Customer != nil {
			card.Customer = &CustomerInfo{
				ID:           j.Customer.ID,
				Name:         j.Customer.Name,
				Email:        j.Customer.Email,
				Phone:        j.Customer.Phone,
				ProfileImage: j.Customer.ProfileImage,
			}
		}
		result.Jobs = append(result.Jobs, card)
	}

	return result, nil
}

type MovesFilter struct {
	Status string
	Search string
}

type CountStat struct {
	Count  int     `json:"count"`
	Change float64 `json:"change_from_last_month"`
}

type SpendStat struct {
	Amount float64 `json:"amount"`
	Change float64 `json:"change_from_last_month"`
}

type MoveStatistics struct {
	TotalActiveMoves   CountStat `json:"total_active_moves"`
	InProgress         CountStat `json:"in_progress"`
	CompletedThisMonth CountStat `json:"completed_this_month"`
	TotalSpent         SpendStat `json:"total_spent"`
}

type ProviderInfo struct {
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image"`
	Rating       float64 `json:"rating"`
}

type Route struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MoveCard struct {
	MoveID        string        `json:"move_id"`
	MoveRequestID types.ID      `json:"move_request_id"`
	MoveTitle     string        `json:"move_title"`
	Status        string        `json:"status"`
	Provider      *ProviderInfo `json:"provider"`
	Route         Route         `json:"route"`
	ScheduledDate types.Date    `json:"scheduled_date"`
	DeliveryDate  *types.Date   `json:"delivery_date"`
	Progress      int           `json:"progress"`
}

type ActiveMovesResult struct {
	Statistics MoveStatistics `json:"statistics"`
	Moves      []MoveCard     `json:"moves"`
}

// ActiveMoves builds the customer dashboard over moves with an accepted
// bid: headline counts with month-over-month deltas, and filtered move
// cards with a coarse progress percentage.
func (s *Service) ActiveMoves(ctx context.Context, actor identity.Actor, f MovesFilter) (*ActiveMovesResult, error) {
	if !actor.IsCustomer() {
		return nil, apperr.Forbidden("Unauthorized. Only customers can view their active moves.")
	}

	all, err := s.store.CustomerMoves(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	// Rejected moves never show on the active board.
	moves := all[:0:0]
	for _, m := range all {
		if m.Request.Status != moverequest.StatusRejected {
			moves = append(moves, m)
		}
	}

	now := s.now()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	var (
		totalActive, inProgress, completedThisMonth int
		lastActive, lastInProgress, lastCompleted   int
		totalSpent, lastSpent                       float64
	)
	for _, m := range moves {
		created := m.Request.CreatedAt
		inThisMonth := !created.Before(thisMonthStart)
		inLastMonth := !created.Before(lastMonthStart) && created.Before(thisMonthStart)

		if m.Request.Status != moverequest.StatusCompleted {
			totalActive++
			if inLastMonth {
				lastActive++
			}
		}
		if m.Request.Status == moverequest.StatusInProgress {
			inProgress++
			if inLastMonth {
				lastInProgress++
			}
		}
		if m.Request.Status == moverequest.StatusCompleted {
			if inThisMonth {
				completedThisMonth++
			}
			if inLastMonth {
				lastCompleted++
			}
		}
		totalSpent += m.OfferedPrice
		if inLastMonth {
			lastSpent += m.OfferedPrice
		}
	}

	stats := MoveStatistics{
		TotalActiveMoves:   CountStat{Count: totalActive, Change: monthChange(float64(totalActive), float64(lastActive))},
		InProgress:         CountStat{Count: inProgress, Change: monthChange(float64(inProgress), float64(lastInProgress))},
		CompletedThisMonth: CountStat{Count: completedThisMonth, Change: monthChange(float64(completedThisMonth), float64(lastCompleted))},
		TotalSpent:         SpendStat{Amount: totalSpent, Change: monthChange(totalSpent, lastSpent)},
	}

	filtered := moves
	switch f.Status {
	case "awaiting_pickup":
		filtered = filterMoves(moves, moverequest.StatusConfirmed)
	case "in_progress":
		filtered = filterMoves(moves, moverequest.StatusInProgress)
	case "completed":
		filtered = filterMoves(moves, moverequest.StatusCompleted)
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		matched := filtered[:0:0]
		for _, m := range filtered {
			mr := m.Request
			if strings.Contains(strings.ToLower(mr.MoveTitle), needle) ||
				strings.Contains(strings.ToLower(mr.MoveType), needle) ||
				strings.Contains(strings.ToLower(mr.PickupAddress), needle) ||
				strings.Contains(strings.ToLower(mr.DropAddress), needle) {
				matched = append(matched, m)
			}
		}
		filtered = matched
	}

	cards := make([]MoveCard, 0, len(filtered))
	for _, m := range filtered {
		mr := m.Request
		card := MoveCard{
			MoveID:        fmt.Sprintf("#MOV-%d-%04d", mr.CreatedAt.Year(), int64(mr.ID)),
			MoveRequestID: mr.ID,
			MoveTitle:     mr.MoveTitle,
			Status:        displayStatus(mr.Status),
			Route:         Route{From: mr.PickupAddress, To: mr.DropAddress},
			ScheduledDate: mr.MoveDate,
			DeliveryDate:  mr.EstimatedDeliveryDate,
			Progress:      progressOf(mr.Status),
		}
		if m.Provider != nil {
			card.Provider = &ProviderInfo{
				Name:         m.Provider.Name,
				ProfileImage: m.Provider.ProfileImage,
				Rating:       s.ratings.AverageRating(),
			}
		}
		cards = append(cards, card)
	}

	return &ActiveMovesResult{Statistics: stats, Moves: cards}, nil
}

type HistoryFilter struct {
	MoveType string
	Status   string
	Sort     string
	Page     int
	PerPage  int
}

type HistoryStatistics struct {
	TotalCompleted int     `json:"total_completed"`
	TotalSpent     float64 `json:"total_spent"`
	CancelledMoves int     `json:"cancelled_moves"`
	AverageRating  float64 `json:"average_rating"`
}

type HistoryItem struct {
	MoveID        string   `json:"move_id"`
	MoveRequestID types.ID `json:"move_request_id"`
	Type          string   `json:"type"`
	Provider      string   `json:"provider"`
	Route         string   `json:"route"`
	Date          string   `json:"date"`
	Cost          float64  `json:"cost"`
	Status        string   `json:"status"`
	Rating        *float64 `json:"rating"`
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

type MoveHistoryResult struct {
	Statistics HistoryStatistics `json:"statistics"`
	History    []HistoryItem     `json:"history"`
	Pagination Pagination        `json:"pagination"`
}

// MoveHistory lists the customer's settled moves (completed or cancelled)
// with pagination. The statistics cover the full history, not the current
// page.
func (s *Service) MoveHistory(ctx context.Context, actor identity.Actor, f HistoryFilter) (*MoveHistoryResult, error) {
	if !actor.IsCustomer() {
		return nil, apperr.Forbidden("Unauthorized. Only customers can view their move history.")
	}

	all, err := s.store.CustomerMoves(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	stats := HistoryStatistics{AverageRating: s.ratings.AverageRating()}
	for _, m := range all {
		switch m.Request.Status {
		case moverequest.StatusCompleted:
			stats.TotalCompleted++
			stats.TotalSpent += m.OfferedPrice
		case moverequest.StatusRejected:
			stats.CancelledMoves++
		}
	}

	var history []Move
	for _, m := range all {
		st := m.Request.Status
		if st != moverequest.StatusCompleted && st != moverequest.StatusRejected {
			continue
		}
		if f.MoveType != "" && f.MoveType != "all" && m.Request.MoveType != f.MoveType {
			continue
		}
		switch f.Status {
		case "completed":
			if st != moverequest.StatusCompleted {
				continue
			}
		case "cancelled":
			if st != moverequest.StatusRejected {
				continue
			}
		}
		history = append(history, m)
	}

	oldest := f.Sort == "oldest"
	sort.SliceStable(history, func(i, j int) bool {
		if oldest {
			return history[i].Request.UpdatedAt.Before(history[j].Request.UpdatedAt)
		}
		return history[i].Request.UpdatedAt.After(history[j].Request.UpdatedAt)
	})

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	total := len(history)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	items := make([]HistoryItem, 0, end-start)
	for _, m := range history[start:end] {
		mr := m.Request
		item := HistoryItem{
			MoveID:        fmt.Sprintf("#MOV-%04d", int64(mr.ID)),
			MoveRequestID: mr.ID,
			Type:          mr.MoveTitle,
			Provider:      "N/A",
			Route:         mr.PickupAddress + " → " + mr.DropAddress,
			Date:          mr.UpdatedAt.Format("02 Jan 2006"),
			Cost:          m.OfferedPrice,
		}
		if m.Provider != nil {
			item.Provider = m.Provider.Name
		}
		switch mr.Status {
		case moverequest.StatusCompleted:
			item.Status = "completed"
			rating := s.ratings.AverageRating()
			item.Rating = &rating
		case moverequest.StatusRejected:
			item.Status = "cancelled"
		default:
			item.Status = "archived"
		}
		items = append(items, item)
	}

	pagination := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		PerPage:     perPage,
		Total:       total,
	}
	if end > start {
		from, to := start+1, end
		pagination.From = &from
		pagination.To = &to
	}

	return &MoveHistoryResult{Statistics: stats, History: items, Pagination: pagination}, nil
}

// monthChange is the percentage delta against last month, one decimal,
// zero when last month had nothing to compare against.
func monthChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func progressOf(s moverequest.Status) int {
	switch s {
	case moverequest.StatusConfirmed:
		return 25
	case moverequest.StatusInProgress:
		return 60
	case moverequest.StatusCompleted:
		return 100
	}
	return 0
}

func displayStatus(s moverequest.Status) string {
	switch s {
	case moverequest.StatusConfirmed:
		return "awaiting_pickup"
	case moverequest.StatusInProgress:
		return "in_progress"
	case moverequest.StatusCompleted:
		return "delivered"
	}
	return string(s)
}

func filterMoves(moves []Move, status moverequest.Status) []Move {
	out := moves[:0:0]
	for _, m := range moves {
		if m.Request.Status == status {
			out = append(out, m)
		}
	}
	return out
}
