package course

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pot-code/course-player/internal/infrastructure/driver"
)

type fakeRows struct {
	rows [][]interface{}
	pos  int
}

func (fr *fakeRows) Next() bool {
	if fr.pos >= len(fr.rows) {
		return false
	}
	fr.pos++
	return true
}

func (fr *fakeRows) Scan(dest ...interface{}) error {
	row := fr.rows[fr.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = row[i].(string)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

func (fr *fakeRows) Close() error { return nil }

type execCall struct {
	query string
	args  []interface{}
}

// fakeDB answers queries by the table they select from
type fakeDB struct {
	tables  map[string][][]interface{}
	queries []string
	execs   []execCall
	execErr error

	txOpts    *driver.TxOptions
	commits   int
	rollbacks int
}

var _ driver.ITransactionalDB = &fakeDB{}

func (db *fakeDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	db.execs = append(db.execs, execCall{query, args})
	return nil, db.execErr
}

func (db *fakeDB) QueryContext(ctx context.Context, query string, args ...interface{}) (driver.ISQLRows, error) {
	db.queries = append(db.queries, query)
	normalized := strings.Join(strings.Fields(query), " ")
	for table, rows := range db.tables {
		if strings.Contains(normalized, "FROM "+table+" ") {
			return &fakeRows{rows: rows}, nil
		}
	}
	return nil, fmt.Errorf("unexpected query: %s", normalized)
}

// BeginTx hands out the fake itself, the transaction outcome is counted
func (db *fakeDB) BeginTx(ctx context.Context, opts *driver.TxOptions) (driver.ITransactionalDB, error) {
	db.txOpts = opts
	return db, nil
}

func (db *fakeDB) Commit(ctx context.Context) error {
	db.commits++
	return nil
}

func (db *fakeDB) Rollback(ctx context.Context) error {
	db.rollbacks++
	return nil
}

func (db *fakeDB) Close(ctx context.Context) error { return nil }
func (db *fakeDB) Ping(ctx context.Context) error  { return nil }
