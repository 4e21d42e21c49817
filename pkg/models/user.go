package models

import "time"

// User represents a user row. The password travels with the struct for
// storage but is never serialized into API responses.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required" example:"John"`
	Surname  string `json:"surname" binding:"required" example:"Doe"`
	Password string `json:"password" binding:"required" example:"securepass"`
}

// UpdateUserRequest is the request body for updating a user. Fields are
// pointers so an absent field and an empty string stay distinguishable.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" example:"Jane"`
	Surname  *string `json:"surname,omitempty" example:"Doe"`
	Password *string `json:"password,omitempty" example:"newpass"`
}

// UserListResponse is the paginated envelope for the list endpoint. Total is
// the full row count, independent of the requested page window.
type UserListResponse struct {
	Users   []User `json:"users"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
