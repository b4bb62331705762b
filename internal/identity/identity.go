// README: Authenticated actor passed explicitly into module services.
package identity

import "github.com/AhmedDevOp360/Transport-Backend/internal/types"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// Actor is the verified caller of an operation. Services receive it as a
// parameter; there is no ambient session state.
type Actor struct {
	UserID types.ID
	Role   Role
}

func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }
func (a Actor) IsProvider() bool { return a.Role == RoleProvider }
