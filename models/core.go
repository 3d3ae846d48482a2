package models

import (
	"log"
	"os"
	"path/filepath"

	"github.com/GrainArc/RasterMap/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DB 主空间库连接（PostGIS），栅格与矢量数据写入目标
var DB *gorm.DB

// TaskDB 本地任务流水库（SQLite），记录上传任务状态
var TaskDB *gorm.DB

// InitDB 初始化主数据库连接
func InitDB() {
	var err error
	DB, err = gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 设置命名策略
	DB.NamingStrategy = schema.NamingStrategy{
		SingularTable: true,
	}
}

// InitTaskDatabase 初始化本地SQLite任务库
func InitTaskDatabase() error {
	StoragePath := config.Download + "/Tasks"
	DBFileName := "tasks.db"
	if err := os.MkdirAll(StoragePath, os.ModePerm); err != nil {
		log.Printf("创建存储目录失败: %v", err)
		return err
	}

	dbPath := filepath.Join(StoragePath, DBFileName)
	log.Printf("任务数据库路径: %s", dbPath)

	var err error
	TaskDB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Printf("连接数据库失败: %v", err)
		return err
	}

	// 自动迁移，创建表结构
	if err := TaskDB.AutoMigrate(&RasterTask{}); err != nil {
		log.Printf("数据库迁移失败: %v", err)
		return err
	}

	log.Println("任务数据库初始化成功")
	return nil
}

// GetTaskDB 获取任务数据库实例
func GetTaskDB() *gorm.DB {
	return TaskDB
}
