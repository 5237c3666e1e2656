package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/service/auth"
)

const (
	// Identity headers. There are no sessions or tokens; every request
	// carries the caller's claimed identity, verified against the
	// credential store.
	HeaderUsername = "X-Username"
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// Authenticate verifies the identity headers and stores the resolved
// identity in the request context.
func Authenticate(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(HeaderUsername)
		role := model.Role(c.GetHeader(HeaderUserRole))
		if username == "" || role == "" {
			abortWithError(c, apperrors.Unauthorized("authentication headers required"))
			return
		}

		identity, err := authSvc.Verify(username, role)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole restricts a route group to the listed roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			abortWithError(c, apperrors.Unauthorized("authentication required"))
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, apperrors.Forbidden("insufficient role for this resource"))
	}
}

// RequireSelfPatient restricts a patient-scoped route to the patient it
// names. Physicians and nurses pass through; patients only reach their
// own data.
func RequireSelfPatient(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			abortWithError(c, apperrors.Unauthorized("authentication required"))
			return
		}
		if identity.Role != model.RolePatient {
			c.Next()
			return
		}

		patientID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || patientID != identity.PersonID {
			abortWithError(c, apperrors.Forbidden("patients may only access their own records"))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated identity, or nil outside the
// authenticated group.
func GetIdentity(c *gin.Context) *model.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*model.Identity)
	return identity
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if sc, ok := err.(interface{ StatusCode() int }); ok {
		status = sc.StatusCode()
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
