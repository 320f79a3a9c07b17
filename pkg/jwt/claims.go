package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator may trigger pipeline runs and state changes through the admin API
const RoleOperator = "operator"

// Claims represents JWT custom claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
