package model

import (
	"time"
)

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	// 用户上传时的原始文件名 不做清洗 仅在响应头中转义
	Filename string `gorm:"column:filename;type:varchar(255);not null" json:"filename"`

	// 对象存储中的确定性 key users/{user_id}/{filename}
	BlobKey string `gorm:"column:blob_key;type:varchar(512);not null;uniqueIndex" json:"-"`

	SizeBytes int64 `gorm:"column:size_bytes;not null" json:"size_bytes"`

	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
