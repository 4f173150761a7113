// Package orm 提供简单的数据库连接池和操作封装
package orm

import (
	"fmt"
)

// DBError 数据库操作错误
type DBError struct {
	Msg string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("DBError msg:%s,err:%v", e.Msg, e.Err)
}

// Unwrap 返回原始错误
func (e *DBError) Unwrap() error {
	return e.Err
}

// NewDBError 构建数据库操作错误
func NewDBError(err error, msg string) *DBError {
	return &DBError{Msg: msg, Err: err}
}

// NewDBErrorf 使用fmt.Sprintf构建
func NewDBErrorf(err error, msgFormat string, args ...interface{}) *DBError {
	return &DBError{Msg: fmt.Sprintf(msgFormat, args...), Err: err}
}

// Dialect 不同数据库在SQL上的差异
type Dialect interface {
	// Name 驱动名称
	Name() string
	// RandomFunc 随机排序函数
	RandomFunc() string
	// AutoIncrementPK 自增主键列的定义
	AutoIncrementPK() string
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string            { return DriverMySQL }
func (mysqlDialect) RandomFunc() string      { return "RAND()" }
func (mysqlDialect) AutoIncrementPK() string { return "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY" }

type sqliteDialect struct{}

func (sqliteDialect) Name() string            { return DriverSQLite }
func (sqliteDialect) RandomFunc() string      { return "RANDOM()" }
func (sqliteDialect) AutoIncrementPK() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
