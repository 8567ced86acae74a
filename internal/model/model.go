// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Page":
		return db.AutoMigrate(Page{})

	case "User":
		return db.AutoMigrate(User{})
	}
	return nil
}

// AutoMigrateAll 迁移全部数据表
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"Page", "User"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
