package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	resp "github.com/JasjusSirsak/bolususu/internal/transport/http/response"
)

const (
	KeyIdentity = "identity"
	KeyUserID   = "userId"
)

// Verifier resolves a bearer credential into a live identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (domain.Identity, error)
}

// AuthJWT authenticates the request and stores the caller under KeyIdentity
// and KeyUserID. A non-empty requireRole also checks the global user role.
func AuthJWT(v Verifier, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok {
			token = ""
		}
		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			status, body := resp.FromError(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		if requireRole != "" && id.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyIdentity, id)
		c.Set(KeyUserID, id.ID)
		c.Next()
	}
}

// Identity returns the caller stored by AuthJWT.
func Identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// UserID returns the caller's id, or 0 outside an authenticated group.
func UserID(c *gin.Context) uint {
	return c.GetUint(KeyUserID)
}
