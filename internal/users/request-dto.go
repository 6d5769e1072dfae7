package users

// registration request payload
type RegisterUserRequest struct {
	Username    string  `json:"username" validate:"required,min=1,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=14"`
	GivenName   string  `json:"given_name" validate:"required,min=1,max=50"`
	MiddleName  *string `json:"middle_name,omitempty" validate:"omitempty,max=50"`
	FamilyName  string  `json:"family_name" validate:"required,min=1,max=50"`
	Gender      string  `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Birthdate   string  `json:"birthdate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PhoneNumber string  `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Address     string  `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// update request payload, all fields optional
type UpdateUserRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=1,max=50"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=14"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
}
