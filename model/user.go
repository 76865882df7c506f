package model

import (
	"time"
)

type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// 邮箱统一小写存储 作为登录标识
	Email string `gorm:"column:email;type:varchar(255);not null;unique" json:"email"`

	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	// 已用容量 与该用户现存 files 记录的 size_bytes 之和保持一致
	UsedBytes int64 `gorm:"column:used_bytes;not null;default:0" json:"used_bytes"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}
