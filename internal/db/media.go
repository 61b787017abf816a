package db

import "gorm.io/gorm"

// MediaItem 记录上传到对象存储的文件元数据
type MediaItem struct {
	gorm.Model
	ObjectKey   string `gorm:"size:300;uniqueIndex;not null"`
	FileName    string `gorm:"size:255"`
	ContentType string `gorm:"size:100"`
	Size        int64
	Width       int
	Height      int
	AltText     string `gorm:"size:300"`
	URL         string `gorm:"size:1000"`
	Storage     string `gorm:"size:20"`
	UploadedBy  uint
}
