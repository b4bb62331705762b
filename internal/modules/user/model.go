// README: User profile collaborator. Account management lives in the external
// auth/profile service; the core only reads profiles when rendering responses.
package user

import (
	"context"

	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type User struct {
	ID           types.ID `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        *string  `json:"phone"`
	UserType     string   `json:"user_type"`
	ProfileImage *string  `json:"profile_image"`
	Address      *string  `json:"address"`
	Country      *string  `json:"country"`
}

// Directory is the read-only view of the user collaborator.
type Directory interface {
	Get(ctx context.Context, id types.ID) (*User, error)
}
