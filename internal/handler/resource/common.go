package resource

import (
	"github.com/gin-gonic/gin"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/ctxutil"
)

// identity resolves the authenticated caller. The second return is the
// manager flag: admins may act on any user's resources.
func identity(c *gin.Context) (userID string, isManager bool, ok bool) {
	ident, ok := ctxutil.GetIdentity(c.Request.Context())
	if !ok {
		return "", false, false
	}
	return ident.UserID, ident.HasRole(auth.RoleAdmin), true
}
