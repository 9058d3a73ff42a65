package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/storage/database"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// namedGet binds the :named parameters of query from arg and scans the single returned row into dest.
func namedGet(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, arg interface{}) error {
	q, args, err := exec.BindNamed(query, arg)
	if err != nil {
		return errors.Wrap(err, "binding named query")
	}
	return exec.GetContext(ctx, dest, q, args...)
}

// deleteRow deletes the row identified by id from table. Deleting a missing row returns core.ErrNotFound.
func deleteRow(ctx context.Context, exec core.DBExecutor, table string, id int64) error {
	res, err := exec.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return database.MapError(err, "deleting from "+table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
