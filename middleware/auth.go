package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crewbook/models"
	"crewbook/utils"
)

const (
	userIDKey = "userID"
	actorKey  = "actor"
)

// JWTAuthMiddleware verifies the bearer token and combines its subject with the 'role'
// header into the request's actor.
func JWTAuthMiddleware(validator *utils.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Missing or invalid Authorization header", nil)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := validator.ExtractIDFromToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", nil)
			return
		}

		role := models.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader("role"))))
		if !role.IsValid() {
			utils.JSONError(c, http.StatusBadRequest, "Invalid or missing 'role' header. Expected 'PLANNER' or 'PROFESSIONAL'.", nil)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(actorKey, models.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

// ActorFromContext returns the actor set by JWTAuthMiddleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
