package orm

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// MemoryURL 内存数据库
const MemoryURL = ":memory:"

// NewSQLitePool 构建SQLite数据库连接池,内存数据库只使用一个连接
func NewSQLitePool(config *DBConfig) (*Pool, error) {
	if config == nil {
		return nil, NewDBError(nil, "not found config")
	}
	if config.URL == "" {
		return nil, NewDBError(nil, "invalid config")
	}
	db, err := sql.Open(DriverSQLite, config.URL)
	if err != nil {
		return nil, NewDBError(err, "can't open connection")
	}
	if config.URL == MemoryURL {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		setupPool(db, config)
	}
	return &Pool{db: db, dialect: sqliteDialect{}}, nil
}
