package models

// AdminRole is the role carried in the admin JWT
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
	RoleAdmin      AdminRole = "ADMIN"
	RoleCashier    AdminRole = "KASIR"
)

// AdminIdentity is the acting admin as extracted from the bearer token.
// Services only use the ID, for audit fields.
type AdminIdentity struct {
	ID       string    `json:"adminId"`
	Username string    `json:"username"`
	Role     AdminRole `json:"role"`
}
