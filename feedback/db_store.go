package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/d0ngw/mobydock/orm"
)

// TableName 消息表
const TableName = "feedback"

// DBStore 使用数据库表存储消息
type DBStore struct {
	db orm.OpCreator
}

// NewDBStore create DBStore
func NewDBStore(db orm.OpCreator) *DBStore {
	return &DBStore{db: db}
}

// CreateTable 创建消息表,表已经存在时不做任何操作
func (p *DBStore) CreateTable(ctx context.Context) error {
	op, err := p.db.NewOp()
	if err != nil {
		return err
	}
	_, err = op.Exec(ctx, createTableSQL(op.Dialect()))
	return err
}

func createTableSQL(dialect orm.Dialect) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id %s, message TEXT NOT NULL)", TableName, dialect.AutoIncrementPK())
}

// Reset implements Resetter.Reset,删除并重建消息表
func (p *DBStore) Reset(ctx context.Context) error {
	op, err := p.db.NewOp()
	if err != nil {
		return err
	}
	return resetTable(ctx, op)
}

func resetTable(ctx context.Context, op *orm.Op) error {
	if _, err := op.Exec(ctx, "DROP TABLE IF EXISTS "+TableName); err != nil {
		return err
	}
	_, err := op.Exec(ctx, createTableSQL(op.Dialect()))
	return err
}

func insert(ctx context.Context, op *orm.Op, message string) (*Feedback, error) {
	message, err := normalize(message)
	if err != nil {
		return nil, err
	}
	result, err := op.Exec(ctx, "INSERT INTO "+TableName+"(message) VALUES(?)", message)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, orm.NewDBError(err, "get feedback id fail")
	}
	return &Feedback{ID: id, Message: message}, nil
}

// Seed implements Seeder,重建表和插入消息在同一个事务中,任何一条失败时全部回滚.
// MySQL的DDL会隐式提交,此时只有插入受事务保护
func (p *DBStore) Seed(ctx context.Context, reset bool, messages ...string) (int, error) {
	op, err := p.db.NewOp()
	if err != nil {
		return 0, err
	}
	err = op.DoInTrans(ctx, func(tx *orm.Op) error {
		if reset {
			if err := resetTable(ctx, tx); err != nil {
				return err
			}
		}
		for i, m := range messages {
			if _, err := insert(ctx, tx, m); err != nil {
				return fmt.Errorf("seed message %d fail: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(messages), nil
}

// PickRandom implements Store.PickRandom
func (p *DBStore) PickRandom(ctx context.Context) (*Feedback, error) {
	op, err := p.db.NewOp()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, message FROM %s ORDER BY %s LIMIT 1", TableName, op.Dialect().RandomFunc())
	f := &Feedback{}
	err = op.QueryRow(ctx, query).Scan(&f.ID, &f.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyStore
	}
	if err != nil {
		return nil, orm.NewDBError(err, "pick random feedback fail")
	}
	return f, nil
}

// Insert implements Store.Insert
func (p *DBStore) Insert(ctx context.Context, message string) (*Feedback, error) {
	op, err := p.db.NewOp()
	if err != nil {
		return nil, err
	}
	return insert(ctx, op, message)
}

// Count implements Store.Count
func (p *DBStore) Count(ctx context.Context) (int64, error) {
	op, err := p.db.NewOp()
	if err != nil {
		return 0, err
	}
	var n int64
	if err = op.QueryRow(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&n); err != nil {
		return 0, orm.NewDBError(err, "count feedback fail")
	}
	return n, nil
}

// All implements Lister.All,按id排序
func (p *DBStore) All(ctx context.Context) ([]*Feedback, error) {
	op, err := p.db.NewOp()
	if err != nil {
		return nil, err
	}
	rows, err := op.Query(ctx, "SELECT id, message FROM "+TableName+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*Feedback
	for rows.Next() {
		f := &Feedback{}
		if err = rows.Scan(&f.ID, &f.Message); err != nil {
			return nil, orm.NewDBError(err, "scan feedback fail")
		}
		all = append(all, f)
	}
	if err = rows.Err(); err != nil {
		return nil, orm.NewDBError(err, "iterate feedback fail")
	}
	return all, nil
}
