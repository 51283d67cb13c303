package postgres

import (
	"context"
	"database/sql"

	"github.com/Bolt667/TallyAndSimon/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) UserRepo() port.UserRepository {
	return NewSQLUserRepository(u.querier())
}

func (u *sqlUnitOfWork) CustomTokenRepo() port.CustomTokenRepository {
	return NewSQLCustomTokenRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&sqlUnitOfWork{db: u.db, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
