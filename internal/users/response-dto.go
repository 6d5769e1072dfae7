package users

import "time"

// public user data, safe for any authenticated caller
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// full profile, returned to the owner (get-me) and on update
type ProfileResponse struct {
	UserResponse
	GivenName   string     `json:"given_name"`
	MiddleName  *string    `json:"middle_name,omitempty"`
	FamilyName  string     `json:"family_name"`
	Gender      string     `json:"gender"`
	Birthdate   *time.Time `json:"birthdate,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	Country     *string    `json:"country,omitempty"`
	IsActive    bool       `json:"is_active"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
