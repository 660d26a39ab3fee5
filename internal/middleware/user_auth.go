package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

const callerKey = "caller"

// Caller is the identity carried by a verified access token.
type Caller struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleSuperAdmin
}

func callerFromClaims(claims jwt.MapClaims) (Caller, error) {
	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return Caller{}, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return Caller{}, errors.New("invalid userId claim")
	}

	caller := Caller{UserID: userID}
	caller.Email, _ = claims["email"].(string)
	caller.Name, _ = claims["name"].(string)
	caller.Role, _ = claims["role"].(string)
	return caller, nil
}

func setCaller(c *gin.Context, caller Caller) {
	c.Set(callerKey, caller)
	c.Set("userId", caller.UserID)
}

// UserAuth validates user JWT tokens and injects the caller into the context.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}

// OptionalAuth stores the caller when a token is sent and lets anonymous
// requests through. A token that is sent must still be valid.
func OptionalAuth(secret string) gin.HandlerFunc {
	guard := AuthGuard(secret)
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		guard(c)
	}
}

// CallerFrom returns the caller stored by UserAuth or AuthGuard.
func CallerFrom(c *gin.Context) (Caller, bool) {
	value, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := value.(Caller)
	return caller, ok
}
