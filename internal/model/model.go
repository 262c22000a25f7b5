package model

import (
	"gorm.io/gorm"
)

// All 全部需要迁移的表
func All() []interface{} {
	return []interface{}{
		&Prompt{},
		&PromptLineage{},
		&User{},
		&UserRole{},
		&UserClaim{},
		&Credential{},
		&ChatMessage{},
	}
}

// AutoMigrate 按模型名迁移单张表，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "":
		return db.AutoMigrate(All()...)
	case "Prompt":
		return db.AutoMigrate(&Prompt{}, &PromptLineage{})
	case "User":
		return db.AutoMigrate(&User{}, &UserRole{}, &UserClaim{})
	case "Credential":
		return db.AutoMigrate(&Credential{})
	case "ChatMessage":
		return db.AutoMigrate(&ChatMessage{})
	}
	return nil
}
