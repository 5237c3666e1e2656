package model

// Identity is the authenticated caller supplied by the HTTP layer on
// every request. The core only performs authorization checks against it.
type Identity struct {
	PersonID int64  `json:"person_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// LoginRequest carries demo credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
