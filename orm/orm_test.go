package orm

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	c "github.com/d0ngw/mobydock/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryPool(t *testing.T) *Pool {
	pool, err := NewPool(&DBConfig{Driver: DriverSQLite, URL: MemoryURL})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	_, err = pool.NewOp().Exec(context.Background(), "CREATE TABLE tmodel (id "+pool.Dialect().AutoIncrementPK()+", name TEXT NOT NULL)")
	require.NoError(t, err)
	return pool
}

func countRows(t *testing.T, op *Op) int {
	var n int
	require.NoError(t, op.QueryRow(context.Background(), "SELECT COUNT(*) FROM tmodel").Scan(&n))
	return n
}

func TestOpExecQuery(t *testing.T) {
	pool := newMemoryPool(t)
	op := pool.NewOp()
	ctx := context.Background()

	result, err := op.Exec(ctx, "INSERT INTO tmodel(name) VALUES(?)", "d0ngw")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	assert.NoError(t, err)
	assert.True(t, id > 0)

	rows, err := op.Query(ctx, "SELECT id, name FROM tmodel")
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var rid int64
		var name string
		require.NoError(t, rows.Scan(&rid, &name))
		assert.Equal(t, id, rid)
		names = append(names, name)
	}
	assert.NoError(t, rows.Err())
	assert.Equal(t, []string{"d0ngw"}, names)

	var name string
	err = op.QueryRow(ctx, "SELECT name FROM tmodel WHERE id = ?", id+100).Scan(&name)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = op.Exec(ctx, "INSERT INTO not_exist(name) VALUES(?)", "x")
	var dbErr *DBError
	assert.True(t, errors.As(err, &dbErr))
}

func TestDoInTrans(t *testing.T) {
	pool := newMemoryPool(t)
	op := pool.NewOp()
	ctx := context.Background()

	err := op.DoInTrans(ctx, func(tx *Op) error {
		for _, name := range []string{"a", "b"} {
			if _, err := tx.Exec(ctx, "INSERT INTO tmodel(name) VALUES(?)", name); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, op))

	rollback := errors.New("rollback")
	err = op.DoInTrans(ctx, func(tx *Op) error {
		if _, err := tx.Exec(ctx, "DELETE FROM tmodel"); err != nil {
			return err
		}
		return tx.DoInTrans(ctx, func(nested *Op) error {
			assert.Equal(t, tx, nested)
			return rollback
		})
	})
	assert.Equal(t, rollback, err)
	assert.Equal(t, 2, countRows(t, op))

	assert.Panics(t, func() {
		_ = op.DoInTrans(ctx, func(tx *Op) error {
			_, _ = tx.Exec(ctx, "DELETE FROM tmodel")
			panic("boom")
		})
	})
	assert.Equal(t, 2, countRows(t, op))
}

func TestDBConfigParse(t *testing.T) {
	conf := &DBConfig{URL: "127.0.0.1:3306", Schema: "mobydock", User: "root"}
	assert.NoError(t, conf.Parse())
	assert.Equal(t, DriverMySQL, conf.Driver)

	assert.NoError(t, (&DBConfig{Driver: DriverSQLite, URL: MemoryURL}).Parse())
	assert.Error(t, (&DBConfig{Driver: DriverSQLite}).Parse())
	assert.Error(t, (&DBConfig{URL: "127.0.0.1:3306", User: "root"}).Parse())
	assert.Error(t, (&DBConfig{URL: "127.0.0.1:3306", Schema: "mobydock"}).Parse())
	assert.Error(t, (&DBConfig{Driver: "postgres", URL: "x"}).Parse())
	assert.Error(t, (&DBConfig{Driver: DriverSQLite, URL: "x", MaxConn: -1}).Parse())

	yamlConf := &DBConfig{}
	require.NoError(t, c.LoadYAML([]byte("driver: sqlite\nurl: ':memory:'\nmaxConn: 2\n"), yamlConf))
	assert.NoError(t, yamlConf.Parse())
	assert.Equal(t, 2, yamlConf.MaxConn)
}

func TestNewPoolInvalid(t *testing.T) {
	_, err := NewPool(nil)
	assert.Error(t, err)
	_, err = NewPool(&DBConfig{Driver: "postgres"})
	assert.Error(t, err)
	_, err = NewMySQLPool(&DBConfig{URL: "127.0.0.1:3306"})
	assert.Error(t, err)

	pool, err := NewMySQLPool(&DBConfig{User: "root", URL: "127.0.0.1:3306", Schema: "mobydock"})
	require.NoError(t, err)
	assert.Equal(t, "RAND()", pool.Dialect().RandomFunc())
	assert.NoError(t, pool.Close())
}

func TestSimpleDBService(t *testing.T) {
	svc := NewSimpleDBService(&DBConfig{Driver: DriverSQLite, URL: MemoryURL}, nil)
	_, err := svc.NewOp()
	assert.Error(t, err)

	require.NoError(t, c.NewServices(svc).Init())
	op, err := svc.NewOp()
	require.NoError(t, err)
	assert.Equal(t, "RANDOM()", op.Dialect().RandomFunc())
	assert.Error(t, svc.Init())
	assert.NoError(t, svc.Stop())

	assert.Error(t, NewSimpleDBService(nil, nil).Init())
}
