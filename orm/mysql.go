package orm

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLPool 构建MySQL数据库连接池
func NewMySQLPool(config *DBConfig) (*Pool, error) {
	if config == nil {
		return nil, NewDBError(nil, "not found config")
	}
	if len(config.User) == 0 || len(config.URL) == 0 || len(config.Schema) == 0 {
		return nil, NewDBError(nil, "invalid config")
	}

	mysqlConf := mysql.NewConfig()
	mysqlConf.User = config.User
	mysqlConf.Passwd = config.Pass
	mysqlConf.Net = "tcp"
	mysqlConf.Addr = config.URL
	mysqlConf.DBName = config.Schema
	mysqlConf.ParseTime = true
	mysqlConf.Loc = time.Local
	charset := config.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	mysqlConf.Params = map[string]string{"charset": charset}

	db, err := sql.Open(DriverMySQL, mysqlConf.FormatDSN())
	if err != nil {
		return nil, NewDBError(err, "can't open connection")
	}
	setupPool(db, config)
	return &Pool{db: db, dialect: mysqlDialect{}}, nil
}
