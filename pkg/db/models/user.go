package models

import "time"

// User is a back-office operator. Role 0 is cashier, 1 is admin.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PhoneNumber  string    `gorm:"column:phone_number"`
	Role         int       `gorm:"column:role;not null;default:0"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserSession is opened at login and closed at logout.
type UserSession struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null"`
	User       *User      `gorm:"foreignKey:UserID"`
	LoginTime  time.Time  `gorm:"column:login_time;not null"`
	LogoutTime *time.Time `gorm:"column:logout_time"`
}

// PasswordReset holds a hashed one-time reset code.
type PasswordReset struct {
	ID        int64      `gorm:"primaryKey"`
	Email     string     `gorm:"column:email;not null;index"`
	CodeHash  string     `gorm:"column:code_hash;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
