// README: Dashboard aggregation tests (formulas, filters, pagination).
package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type memStore struct {
	jobs  []Job
	moves []Move
}

func (m *memStore) ProviderJobs(_ context.Context, _ types.ID, f JobsFilter) ([]Job, error) {
	var out []Job
	for _, j := range m.jobs {
		if f.Status != "" && string(j.Request.Status) != f.Status {
			continue
		}
		if f.JobID != nil && j.Request.ID != *f.JobID {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (m *memStore) CustomerMoves(_ context.Context, _ types.ID) ([]Move, error) {
	return m.moves, nil
}

var (
	customer = identity.Actor{UserID: 1, Role: identity.RoleCustomer}
	provider = identity.Actor{UserID: 2, Role: identity.RoleProvider}

	testNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
)

func newTestService(store Store) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func mustDate(s string) types.Date {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func request(id types.ID, status moverequest.Status, created time.Time) moverequest.MoveRequest {
	return moverequest.MoveRequest{
		ID:            id,
		UserID:        customer.UserID,
		MoveType:      "apartment",
		VehicleType:   "medium_truck",
		MoveTitle:     "2BR move",
		PickupAddress: "12 Old Town Rd",
		DropAddress:   "9 New City Ave",
		MoveDate:      mustDate("2026-09-15"),
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestMonthChange(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{10, 5, 100},
		{5, 10, -50},
		{3, 9, -66.7},
		{7, 0, 0},  // nothing last month -> no delta
		{0, 0, 0},
		{12, 12, 0},
	}
	for _, tc := range cases {
		if got := monthChange(tc.current, tc.previous); got != tc.want {
			t.Errorf("monthChange(%v, %v) = %v, want %v", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestProgressAndDisplayStatus(t *testing.T) {
	cases := []struct {
		status   moverequest.Status
		progress int
		display  string
	}{
		{moverequest.StatusConfirmed, 25, "awaiting_pickup"},
		{moverequest.StatusInProgress, 60, "in_progress"},
		{moverequest.StatusCompleted, 100, "delivered"},
		{moverequest.StatusPending, 0, "pending"},
	}
	for _, tc := range cases {
		if got := progressOf(tc.status); got != tc.progress {
			t.Errorf("progressOf(%s) = %d, want %d", tc.status, got, tc.progress)
		}
		if got := displayStatus(tc.status); got != tc.display {
			t.Errorf("displayStatus(%s) = %q, want %q", tc.status, got, tc.display)
		}
	}
}

func TestActiveJobs(t *testing.T) {
	thisWeek := time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)

	urgent := request(1, moverequest.StatusConfirmed, thisWeek)
	urgent.MoveDate = mustDate("2026-08-30") // within two days of testNow

	completedToday := request(2, moverequest.StatusCompleted, thisWeek)
	completedToday.UpdatedAt = testNow.Add(-2 * time.Hour)

	completedEarlier := request(3, moverequest.StatusCompleted, thisWeek)
	completedEarlier.UpdatedAt = testNow.AddDate(0, 0, -3)

	inProgress := request(4, moverequest.StatusInProgress, thisWeek)

	store := &memStore{jobs: []Job{
		{ApplicationID: 11, OfferedPrice: 500, DeliveryTime: "2 days", Request: urgent, Customer: &user.User{ID: 1, Name: "Dana"}},
		{ApplicationID: 12, OfferedPrice: 450, DeliveryTime: "1 day", Request: completedToday},
		{ApplicationID: 13, OfferedPrice: 300, DeliveryTime: "3 days", Request: completedEarlier},
		{ApplicationID: 14, OfferedPrice: 700, DeliveryTime: "2 days", Request: inProgress},
	}}
	svc := newTestService(store)

	result, err := svc.ActiveJobs(context.Background(), provider, JobsFilter{})
	if err != nil {
		t.Fatalf("active jobs: %v", err)
	}

	want := JobStatistics{TotalActiveJobs: 2, CompletedToday: 1, PendingJobs: 0, UrgentJobs: 1}
	if result.Statistics != want {
		t.Fatalf("unexpected statistics: %+v", result.Statistics)
	}
	dist := JobDistribution{Confirmed: 1, InProgress: 1, Completed: 2}
	if result.JobDistribution != dist {
		t.Fatalf("unexpected distribution: %+v", result.JobDistribution)
	}
	if len(result.Jobs) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(result.Jobs))
	}
	if result.Jobs[0].JobID != "JOB-ID: #MV-2026-001" {
		t.Fatalf("unexpected job id: %q", result.Jobs[0].JobID)
	}
	if result.Jobs[0].Customer == nil || result.Jobs[0].Customer.Name != "Dana" {
		t.Fatalf("expected customer on first card, got %+v", result.Jobs[0].Customer)
	}

	if _, err := svc.ActiveJobs(context.Background(), customer, JobsFilter{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for customer, got %v", err)
	}
}

func TestActiveMoves(t *testing.T) {
	thisMonth := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	store := &memStore{moves: []Move{
		{Request: request(1, moverequest.StatusConfirmed, thisMonth), OfferedPrice: 500, Provider: &user.User{ID: 2, Name: "MoveCo"}},
		{Request: request(2, moverequest.StatusInProgress, lastMonth), OfferedPrice: 300},
		{Request: request(3, moverequest.StatusCompleted, thisMonth), OfferedPrice: 700},
		{Request: request(4, moverequest.StatusRejected, thisMonth), OfferedPrice: 100},
	}}
	svc := newTestService(store)

	result, err := svc.ActiveMoves(context.Background(), customer, MovesFilter{})
	if err != nil {
		t.Fatalf("active moves: %v", err)
	}

	// Rejected move 4 is invisible everywhere.
	if result.Statistics.TotalActiveMoves.Count != 2 {
		t.Fatalf("expected 2 active moves, got %d", result.Statistics.TotalActiveMoves.Count)
	}
	if result.Statistics.InProgress.Count != 1 {
		t.Fatalf("expected 1 in progress, got %d", result.Statistics.InProgress.Count)
	}
	if result.Statistics.CompletedThisMonth.Count != 1 {
		t.Fatalf("expected 1 completed this month, got %d", result.Statistics.CompletedThisMonth.Count)
	}
	if result.Statistics.TotalSpent.Amount != 1500 {
		t.Fatalf("expected 1500 spent, got %v", result.Statistics.TotalSpent.Amount)
	}
	// 1500 now vs 300 created last month -> +400%.
	if result.Statistics.TotalSpent.Change != 400 {
		t.Fatalf("expected +400%% spend change, got %v", result.Statistics.TotalSpent.Change)
	}
	if len(result.Moves) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(result.Moves))
	}

	first := result.Moves[0]
	if first.MoveID != "#MOV-2026-0001" {
		t.Fatalf("unexpected move id: %q", first.MoveID)
	}
	if first.Status != "awaiting_pickup" || first.Progress != 25 {
		t.Fatalf("unexpected card state: %+v", first)
	}
	if first.Provider == nil || first.Provider.Name != "MoveCo" || first.Provider.Rating != 4.5 {
		t.Fatalf("unexpected provider info: %+v", first.Provider)
	}
}

func TestActiveMovesFilters(t *testing.T) {
	thisMonth := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	office := request(2, moverequest.StatusInProgress, thisMonth)
	office.MoveTitle = "Office relocation"

	store := &memStore{moves: []Move{
		{Request: request(1, moverequest.StatusConfirmed, thisMonth), OfferedPrice: 500},
		{Request: office, OfferedPrice: 900},
	}}
	svc := newTestService(store)

	byStatus, err := svc.ActiveMoves(context.Background(), customer, MovesFilter{Status: "in_progress"})
	if err != nil {
		t.Fatalf("active moves: %v", err)
	}
	if len(byStatus.Moves) != 1 || byStatus.Moves[0].MoveRequestID != 2 {
		t.Fatalf("unexpected status filter result: %+v", byStatus.Moves)
	}

	bySearch, err := svc.ActiveMoves(context.Background(), customer, MovesFilter{Search: "office"})
	if err != nil {
		t.Fatalf("active moves: %v", err)
	}
	if len(bySearch.Moves) != 1 || bySearch.Moves[0].MoveTitle != "Office relocation" {
		t.Fatalf("unexpected search result: %+v", bySearch.Moves)
	}

	// Statistics always cover the whole board, not the filtered subset.
	if byStatus.Statistics.TotalActiveMoves.Count != 2 {
		t.Fatalf("expected stats over all moves, got %+v", byStatus.Statistics)
	}
}

func TestMoveHistory(t *testing.T) {
	var moves []Move
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		mr := request(types.ID(i+1), moverequest.StatusCompleted, base.AddDate(0, 0, i))
		moves = append(moves, Move{Request: mr, OfferedPrice: 100, Provider: &user.User{Name: "MoveCo"}})
	}
	cancelled := request(13, moverequest.StatusRejected, base)
	active := request(14, moverequest.StatusInProgress, base)
	moves = append(moves,
		Move{Request: cancelled, OfferedPrice: 100},
		Move{Request: active, OfferedPrice: 100},
	)

	svc := newTestService(&memStore{moves: moves})

	result, err := svc.MoveHistory(context.Background(), customer, HistoryFilter{})
	if err != nil {
		t.Fatalf("move history: %v", err)
	}

	// Statistics cover the full history even though page 1 shows 10 rows.
	if result.Statistics.TotalCompleted != 12 || result.Statistics.TotalSpent != 1200 {
		t.Fatalf("unexpected statistics: %+v", result.Statistics)
	}
	if result.Statistics.CancelledMoves != 1 {
		t.Fatalf("expected 1 cancelled, got %d", result.Statistics.CancelledMoves)
	}
	if len(result.History) != 10 {
		t.Fatalf("expected 10 rows on page 1, got %d", len(result.History))
	}
	// Default sort is most recent first.
	if result.History[0].MoveRequestID != 12 {
		t.Fatalf("expected newest first, got %+v", result.History[0])
	}
	if result.History[0].MoveID != "#MOV-0012" {
		t.Fatalf("unexpected move id: %q", result.History[0].MoveID)
	}
	if result.History[0].Route != "12 Old Town Rd → 9 New City Ave" {
		t.Fatalf("unexpected route: %q", result.History[0].Route)
	}
	if result.History[0].Date != "12 May 2026" {
		t.Fatalf("unexpected date: %q", result.History[0].Date)
	}
	if result.History[0].Rating == nil || *result.History[0].Rating != 4.5 {
		t.Fatalf("expected rating on completed move, got %v", result.History[0].Rating)
	}

	p := result.Pagination
	if p.CurrentPage != 1 || p.TotalPages != 2 || p.Total != 13 || p.PerPage != 10 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if p.From == nil || *p.From != 1 || p.To == nil || *p.To != 10 {
		t.Fatalf("unexpected from/to: %+v", p)
	}

	page2, err := svc.MoveHistory(context.Background(), customer, HistoryFilter{Page: 2})
	if err != nil {
		t.Fatalf("move history page 2: %v", err)
	}
	if len(page2.History) != 3 {
		t.Fatalf("expected 3 rows on page 2, got %d", len(page2.History))
	}
	if page2.Pagination.From == nil || *page2.Pagination.From != 11 {
		t.Fatalf("unexpected page 2 from: %+v", page2.Pagination)
	}

	cancelledOnly, err := svc.MoveHistory(context.Background(), customer, HistoryFilter{Status: "cancelled"})
	if err != nil {
		t.Fatalf("move history cancelled: %v", err)
	}
	if len(cancelledOnly.History) != 1 || cancelledOnly.History[0].Status != "cancelled" {
		t.Fatalf("unexpected cancelled rows: %+v", cancelledOnly.History)
	}
	if cancelledOnly.History[0].Rating != nil {
		t.Fatal("cancelled moves carry no rating")
	}

	oldest, err := svc.MoveHistory(context.Background(), customer, HistoryFilter{Sort: "oldest"})
	if err != nil {
		t.Fatalf("move history oldest: %v", err)
	}
	if oldest.History[0].MoveRequestID != 1 {
		t.Fatalf("expected oldest first, got %+v", oldest.History[0])
	}
}

func TestMoveHistoryEmpty(t *testing.T) {
	svc := newTestService(&memStore{})

	result, err := svc.MoveHistory(context.Background(), customer, HistoryFilter{})
	if err != nil {
		t.Fatalf("move history: %v", err)
	}
	if result.Pagination.TotalPages != 1 || result.Pagination.Total != 0 {
		t.Fatalf("unexpected pagination: %+v", result.Pagination)
	}
	if result.Pagination.From != nil || result.Pagination.To != nil {
		t.Fatal("expected nil from/to on empty history")
	}
	if len(result.History) != 0 {
		t.Fatalf("expected no rows, got %d", len(result.History))
	}
}
