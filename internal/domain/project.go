package domain

import "time"

// Role is a per-project membership role, unrelated to User.Role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	UniqueCode  string    `gorm:"column:unique_code;size:16;not null;uniqueIndex" json:"unique_code"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Project) TableName() string { return "projects" }

type ProjectMembership struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (ProjectMembership) TableName() string { return "project_members" }

// UserProject is one entry of "projects I belong to".
type UserProject struct {
	ProjectID   uint      `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UniqueCode  string    `json:"unique_code"`
	OwnerID     uint      `json:"owner_id"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Member is one entry of a project's member list.
type Member struct {
	UserID   uint      `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
