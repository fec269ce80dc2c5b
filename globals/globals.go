package globals

import (
	"context"
	"os"
)

var JwtSecret = []byte(jwtSecretFromEnv())

func jwtSecretFromEnv() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "dev-only-secret"
}

// Context keys
type ContextKey string

const (
	UserIDKey   ContextKey = "userId"
	UsernameKey ContextKey = "username"
	RoleKey     ContextKey = "role"
	ZoneKey     ContextKey = "assignedZone"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var Ctx = context.Background()
