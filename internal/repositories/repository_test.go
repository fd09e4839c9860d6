package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_AdjustBalance(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		exists   int64
		wantErr  error
	}{
		{"credit applied", 1, 0, nil},
		{"overdraw refused", 0, 1, ErrInsufficientBalance},
		{"missing user", 0, 0, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()
			if tt.affected == 0 {
				mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = \$1`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.exists))
			}

			err := NewUserRepository(db, nil).AdjustBalance(context.Background(), 7, decimal.NewFromInt(-50))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepository(db, nil).GetByEmail(context.Background(), " Someone@Example.com ")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_IncrementCompletionsCap(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET "completions"=completions \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewTaskRepository(db).IncrementCompletions(context.Background(), 3)
	assert.ErrorIs(t, err, ErrCompletionCapReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SumWithdrawalsSince(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("150.50"))

	total, err := NewTransactionRepository(db).SumWithdrawalsSince(context.Background(), 1, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("150.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewStore(db, nil).WithTx(context.Background(), func(tx Store) error {
		assert.NotNil(t, tx.Users())
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "admins" SET "token_version"=token_version \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewStore(db, nil).WithTx(context.Background(), func(tx Store) error {
		return tx.Admins().IncrementTokenVersion(context.Background(), 1)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_GatewayReferenceInUse(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE .*type = \$1 AND gateway = \$2 AND gateway_reference = \$3 AND status <> \$4 AND id <> \$5`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	used, err := NewTransactionRepository(db).GatewayReferenceInUse(context.Background(), "stripe", "pi_1", 12)
	require.NoError(t, err)
	assert.True(t, used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_DueInstallmentsLocksRows(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "loan_repayments" WHERE .*loan_id = \$1 AND status = \$2 AND due_date < \$3.* ORDER BY installment ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "installment", "status"}).AddRow(5, 3, 2, "Pending"))

	rows, err := NewLoanRepository(db).DueInstallments(context.Background(), 3, time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Installment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type evictRecorder struct{ ids []uint }

func (e *evictRecorder) InvalidateUser(_ context.Context, id uint) error {
	e.ids = append(e.ids, id)
	return nil
}

func TestStore_UserCacheInvalidatedAfterCommit(t *testing.T) {
	db, mock := newMockDB(t)
	evict := &evictRecorder{}
	store := &gormStore{db: db, evict: evict}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(tx Store) error {
		if err := tx.Users().AdjustBalance(context.Background(), 4, decimal.NewFromInt(10)); err != nil {
			return err
		}
		if err := tx.Users().AdjustBalance(context.Background(), 4, decimal.NewFromInt(5)); err != nil {
			return err
		}
		assert.Empty(t, evict.ids, "cache touched before commit")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, evict.ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UserCacheKeptOnRollback(t *testing.T) {
	db, mock := newMockDB(t)
	evict := &evictRecorder{}
	store := &gormStore{db: db, evict: evict}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.WithTx(context.Background(), func(tx Store) error {
		if err := tx.Users().UpdateFields(context.Background(), 9, map[string]interface{}{"status": "Suspended"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, evict.ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, ErrUserNotFound))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, ErrLoanNotFound), ErrLoanNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, ErrLoanNotFound), ErrDuplicate)

	err := translate(errors.New("conn reset"), ErrLoanNotFound)
	assert.Contains(t, err.Error(), "database operation failed")
}
