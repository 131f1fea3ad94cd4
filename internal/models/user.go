package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"unique;not null"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"default:'waiter'"` // waiter, bartender, manager, admin
	VenueID      *uint     `json:"venue_id" gorm:"index"`
	EmployeeID   string    `json:"employee_id"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRole string

const (
	Waiter    UserRole = "waiter"
	Bartender UserRole = "bartender"
	Manager   UserRole = "manager"
	Admin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Waiter, Bartender, Manager, Admin:
		return true
	}
	return false
}
