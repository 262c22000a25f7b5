package model

import "time"

const (
	TableNameUser      = "user"
	TableNameUserRole  = "user_role"
	TableNameUserClaim = "user_claim"
)

// User mapped from table <user>
type User struct {
	UID           int64     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email         string    `gorm:"column:email;size:255;not null;uniqueIndex:idx_user_email" json:"email"`
	Username      string    `gorm:"column:username;size:64;not null;uniqueIndex:idx_user_username" json:"username"`
	Password      string    `gorm:"column:password;size:255;not null" json:"-"`
	EmailVerified bool      `gorm:"column:email_verified;not null;default:false" json:"emailVerified"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}

// UserRole mapped from table <user_role>
type UserRole struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID  int64  `gorm:"column:uid;not null;uniqueIndex:idx_user_role,priority:1" json:"uid"`
	Role string `gorm:"column:role;size:64;not null;uniqueIndex:idx_user_role,priority:2" json:"role"`
}

// TableName UserRole's table name
func (*UserRole) TableName() string {
	return TableNameUserRole
}

// UserClaim mapped from table <user_claim>
type UserClaim struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID        int64  `gorm:"column:uid;not null;uniqueIndex:idx_user_claim,priority:1" json:"uid"`
	ClaimType  string `gorm:"column:claim_type;size:128;not null;uniqueIndex:idx_user_claim,priority:2" json:"claimType"`
	ClaimValue string `gorm:"column:claim_value;size:255;not null;uniqueIndex:idx_user_claim,priority:3" json:"claimValue"`
}

// TableName UserClaim's table name
func (*UserClaim) TableName() string {
	return TableNameUserClaim
}
