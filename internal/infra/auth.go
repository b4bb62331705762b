// README: Bearer-token verification. Identity issuance lives in a separate
// auth service; this side only validates the signed token and extracts the actor.
package infra

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AhmedDevOp360/Transport-Backend/internal/identity"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

// TokenVerifier verifies a raw bearer token and returns the actor it encodes.
type TokenVerifier interface {
	Verify(token string) (identity.Actor, error)
}

// Claims is the JWT claim set issued by the auth service.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenStr string) (identity.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return identity.Actor{}, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Actor{}, fmt.Errorf("invalid token")
	}

	role := identity.Role(claims.Role)
	if role != identity.RoleCustomer && role != identity.RoleProvider {
		return identity.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	if claims.UserID <= 0 {
		return identity.Actor{}, fmt.Errorf("missing user_id claim")
	}
	return identity.Actor{UserID: types.ID(claims.UserID), Role: role}, nil
}
