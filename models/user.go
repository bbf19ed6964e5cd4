package models

import "time"

// RoleType is the platform role carried by user and admin records
type RoleType string

const (
	RoleStudent    RoleType = "student"
	RoleInstructor RoleType = "instructor"
	RoleAdmin      RoleType = "admin"
	RoleSuperAdmin RoleType = "super_admin"
)

type User struct {
	ID              string    `json:"_id,omitempty"`
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	Role            RoleType  `json:"role,omitempty"`
	Verified        bool      `json:"isVerified,omitempty"`
	Blocked         bool      `json:"isBlocked,omitempty"`
	EnrolledCourses []string  `json:"enrolledCourses,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

type Admin struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      RoleType  `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (a *Admin) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleSuperAdmin
}

// DashboardStats is the admin back-office summary
type DashboardStats struct {
	TotalUsers       int `json:"totalUsers"`
	TotalCourses     int `json:"totalCourses"`
	TotalEnrollments int `json:"totalEnrollments"`
	TotalBlogs       int `json:"totalBlogs"`
	TotalEvents      int `json:"totalEvents"`
}

type AddAdminRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     RoleType `json:"role,omitempty" validate:"omitempty,oneof=admin super_admin"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
}
