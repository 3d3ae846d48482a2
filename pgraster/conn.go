package pgraster

import (
	"gorm.io/gorm"
)

// Conn 目标数据库连接的最小接口，上传流程只依赖串行的
// 语句执行与单行查询两种能力
type Conn interface {
	Exec(sql string, args ...interface{}) error
	QueryRow(sql string, dest ...interface{}) error
	// QueryStrings 执行单列查询并按行序返回字符串结果
	QueryStrings(sql string) ([]string, error)
}

// GormConn 基于gorm连接的Conn实现
type GormConn struct {
	DB *gorm.DB
}

func (g *GormConn) Exec(sql string, args ...interface{}) error {
	return g.DB.Exec(sql, args...).Error
}

func (g *GormConn) QueryRow(sql string, dest ...interface{}) error {
	row := g.DB.Raw(sql).Row()
	return row.Scan(dest...)
}

func (g *GormConn) QueryStrings(sql string) ([]string, error) {
	var out []string
	if err := g.DB.Raw(sql).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
