package model

import "time"

type UploadStatus string

const (
	// 文件向量化处理完成
	UploadStatusCompleted UploadStatus = "completed"

	// 文件向量化处理失败
	UploadStatusFailed UploadStatus = "failed"
)

// UserDocument 存储用户上传文档的元数据
// 建立联合索引 (user_id, created_at)
type UserDocument struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index:idx_user_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	UserID    string    `gorm:"not null;index:idx_user_created" json:"user_id"`
	SessionID string    `json:"session_id"`
	DocID     string    `gorm:"not null;uniqueIndex" json:"doc_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	FileSize  int64     `gorm:"not null" json:"file_size"`
	NumChunks int       `gorm:"not null" json:"num_chunks"`

	// 文档处理状态
	UploadStatus UploadStatus `gorm:"not null;default:completed" json:"upload_status"`
}

func (UserDocument) TableName() string {
	return "user_document"
}
