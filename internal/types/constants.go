package types

const (
	ContextIdentityKey  = "identity"
	ContextRequestIDKey = "request_id"

	AuthCookieName = "auth-token"
)

const (
	RoleUser    = "USER"
	RoleAdmin   = "ADMIN"
	RoleAnalyst = "ANALYST"
)

// StaffRoles may publish readings and alerts and verify pledges.
var StaffRoles = []string{RoleAdmin, RoleAnalyst}
