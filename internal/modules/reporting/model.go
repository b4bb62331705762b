// README: Read models for the provider and customer dashboards.
package reporting

import (
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// Job is a provider's won work item: the accepted application joined to its
// move request and the requesting customer.
type Job struct {
	ApplicationID types.ID
	OfferedPrice  float64
	DeliveryTime  string
	Request       moverequest.MoveRequest
	Customer      *user.User
}

// Move is a customer's move request joined to its accepted application and
// the winning provider.
type Move struct {
	Request      moverequest.MoveRequest
	OfferedPrice float64
	Provider     *user.User
}
