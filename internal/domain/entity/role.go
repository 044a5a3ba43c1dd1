package entity

// Role ID constants carried in the access token's role claim
const (
	RoleIDAdmin = 1
	RoleIDStaff = 2
)

// RoleNames constants
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
