package users

import (
	"time"

	"github.com/google/uuid"
)

// Gender of a user, carried verbatim into token claims.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func IsValidGender(gender string) bool {
	switch Gender(gender) {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

type User struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Username    string     `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"not null"` // bcrypt hash, hidden in json
	GivenName   string     `json:"given_name" gorm:"not null;size:50"`
	MiddleName  *string    `json:"middle_name,omitempty" gorm:"size:50"`
	FamilyName  string     `json:"family_name" gorm:"not null;size:50"`
	Gender      Gender     `json:"gender" gorm:"not null;default:'male'"`
	Birthdate   *time.Time `json:"birthdate,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	Country     *string    `json:"country,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// FullName joins given, middle (when present) and family names.
func (u *User) FullName() string {
	if u.MiddleName != nil && *u.MiddleName != "" {
		return u.GivenName + " " + *u.MiddleName + " " + u.FamilyName
	}
	return u.GivenName + " " + u.FamilyName
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) ToProfileResponse() ProfileResponse {
	return ProfileResponse{
		UserResponse: u.ToResponse(),
		GivenName:    u.GivenName,
		MiddleName:   u.MiddleName,
		FamilyName:   u.FamilyName,
		Gender:       string(u.Gender),
		Birthdate:    u.Birthdate,
		PhoneNumber:  u.PhoneNumber,
		Address:      u.Address,
		City:         u.City,
		State:        u.State,
		Country:      u.Country,
		IsActive:     u.IsActive,
		UpdatedAt:    u.UpdatedAt,
	}
}
