package orm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	c "github.com/d0ngw/mobydock/common"
)

// PoolFunc 根据配置创建连接池
type PoolFunc func(config *DBConfig) (*Pool, error)

// NewPool 根据config.Driver创建连接池
func NewPool(config *DBConfig) (*Pool, error) {
	if config == nil {
		return nil, NewDBError(nil, "not found config")
	}
	switch config.Driver {
	case DriverMySQL, "":
		return NewMySQLPool(config)
	case DriverSQLite:
		return NewSQLitePool(config)
	}
	return nil, NewDBErrorf(nil, "unsupported driver %s", config.Driver)
}

func setupPool(db *sql.DB, config *DBConfig) {
	db.SetMaxIdleConns(config.MaxIdle)
	db.SetMaxOpenConns(config.MaxConn)
	if config.MaxTimeSecond > 0 {
		db.SetConnMaxLifetime(time.Duration(config.MaxTimeSecond) * time.Second)
	}
}

// Pool 数据库连接池
type Pool struct {
	db      *sql.DB
	dialect Dialect
}

// Dialect 取得数据库方言
func (p *Pool) Dialect() Dialect {
	return p.dialect
}

// Ping 检查数据库连接
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return NewDBError(err, "ping fail")
	}
	return nil
}

// Close 关闭连接池
func (p *Pool) Close() error {
	return p.db.Close()
}

// NewOp 创建数据库操作
func (p *Pool) NewOp() *Op {
	return &Op{pool: p}
}

// OpCreator 创建Op
type OpCreator interface {
	NewOp() (*Op, error)
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Op 数据库操作,在DoInTrans中执行的操作使用同一个事务
type Op struct {
	pool *Pool
	tx   *sql.Tx
}

// Dialect 取得数据库方言
func (p *Op) Dialect() Dialect {
	return p.pool.dialect
}

func (p *Op) executor() executor {
	if p.tx != nil {
		return p.tx
	}
	return p.pool.db
}

// Exec 执行更新
func (p *Op) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	c.Debugf("exec:%s,args:%v", query, args)
	result, err := p.executor().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, NewDBErrorf(err, "exec %s fail", query)
	}
	return result, nil
}

// Query 执行查询
func (p *Op) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	c.Debugf("query:%s,args:%v", query, args)
	rows, err := p.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewDBErrorf(err, "query %s fail", query)
	}
	return rows, nil
}

// QueryRow 查询单行,没有结果时Scan返回sql.ErrNoRows
func (p *Op) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	c.Debugf("query row:%s,args:%v", query, args)
	return p.executor().QueryRowContext(ctx, query, args...)
}

// DoInTrans 在事务中执行f,f返回错误或者panic时回滚,否则提交
func (p *Op) DoInTrans(ctx context.Context, f func(op *Op) error) (err error) {
	if p.tx != nil {
		return f(p)
	}
	tx, err := p.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDBError(err, "begin transaction fail")
	}
	txOp := &Op{pool: p.pool, tx: tx}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err = f(txOp); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.Errorf("rollback fail,err:%v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return NewDBError(err, "commit fail")
	}
	return nil
}

// String for debug
func (p *Op) String() string {
	return fmt.Sprintf("Op{driver:%s,inTrans:%v}", p.pool.dialect.Name(), p.tx != nil)
}
