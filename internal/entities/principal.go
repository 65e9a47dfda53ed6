package entities

import "time"

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// Principal is an authenticated actor of the portal.
// Only the bcrypt hash of the password is ever stored.
type Principal struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:60;not null" json:"-"`
	Role         Role      `gorm:"index;size:20;not null" json:"role"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	Address      string    `gorm:"size:500" json:"address,omitempty"`
	ResumePath   string    `gorm:"size:1024" json:"resume_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Principal) TableName() string {
	return "principals"
}
