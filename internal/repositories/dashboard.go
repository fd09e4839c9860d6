package repositories

import (
	"context"
	"time"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the admin overview.
type DashboardRepository interface {
	Metrics(ctx context.Context, dayStart time.Time) (*models.DashboardMetrics, error)
	DailyVolumes(ctx context.Context, since time.Time) ([]models.DailyPoint, error)
	DailySignups(ctx context.Context, since time.Time) (map[string]int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *dashboardRepository) sum(ctx context.Context, model interface{}, column, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(model).
		Select("COALESCE(SUM("+column+"), 0)").
		Where(query, args...).
		Row().Scan(&total)
	return total, err
}

func (r *dashboardRepository) Metrics(ctx context.Context, dayStart time.Time) (*models.DashboardMetrics, error) {
	m := &models.DashboardMetrics{GeneratedAt: time.Now().UTC()}
	settled := []string{models.TransactionStatusApproved, models.TransactionStatusCompleted}

	steps := []func() error{
		func() (err error) {
			m.Users.Total, err = r.count(ctx, &models.User{}, "")
			return
		},
		func() (err error) {
			m.Users.Active, err = r.count(ctx, &models.User{}, "status = ?", models.UserStatusActive)
			return
		},
		func() (err error) {
			m.Users.NewToday, err = r.count(ctx, &models.User{}, "created_at >= ?", dayStart)
			return
		},
		func() (err error) {
			m.Users.KYCPending, err = r.count(ctx, &models.User{}, "kyc_status = ? AND cardinality(kyc_documents) > 0", models.KYCStatusPending)
			return
		},
		func() (err error) {
			m.Transactions.TotalDeposits, err = r.sum(ctx, &models.Transaction{}, "amount",
				"type = ? AND status IN ?", models.TransactionTypeDeposit, settled)
			return
		},
		func() (err error) {
			m.Transactions.TotalWithdrawals, err = r.sum(ctx, &models.Transaction{}, "amount",
				"type = ? AND status IN ?", models.TransactionTypeWithdrawal, settled)
			return
		},
		func() (err error) {
			m.Transactions.PendingDeposits, err = r.count(ctx, &models.Transaction{},
				"type = ? AND status = ?", models.TransactionTypeDeposit, models.TransactionStatusPending)
			return
		},
		func() (err error) {
			m.Transactions.PendingWithdrawals, err = r.count(ctx, &models.Transaction{},
				"type = ? AND status = ?", models.TransactionTypeWithdrawal, models.TransactionStatusPending)
			return
		},
		func() (err error) {
			m.Transactions.FeesCollected, err = r.sum(ctx, &models.Transaction{}, "fee", "status IN ?", settled)
			return
		},
		func() (err error) {
			m.Loans.Active, err = r.count(ctx, &models.Loan{}, "status = ?", models.LoanStatusActive)
			return
		},
		func() (err error) {
			m.Loans.Outstanding, err = r.sum(ctx, &models.Loan{}, "remaining_amount",
				"status IN ?", []string{models.LoanStatusActive, models.LoanStatusDefaulted})
			return
		},
		func() (err error) {
			m.Loans.Overdue, err = r.count(ctx, &models.LoanRepayment{}, "status = ?", models.RepaymentStatusOverdue)
			return
		},
		func() (err error) {
			m.Tasks.PendingSubmissions, err = r.count(ctx, &models.TaskSubmission{}, "status = ?", models.SubmissionStatusPending)
			return
		},
		func() (err error) {
			m.Support.OpenTickets, err = r.count(ctx, &models.SupportTicket{},
				"status IN ?", []string{models.TicketStatusOpen, models.TicketStatusInProgress})
			return
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, translate(err, ErrNotFound)
		}
	}
	return m, nil
}

func (r *dashboardRepository) DailyVolumes(ctx context.Context, since time.Time) ([]models.DailyPoint, error) {
	var rows []struct {
		Day         time.Time
		Deposits    decimal.Decimal
		Withdrawals decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`date_trunc('day', created_at) AS day,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS deposits,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS withdrawals`,
			models.TransactionTypeDeposit, models.TransactionTypeWithdrawal).
		Where("created_at >= ? AND status IN ?", since,
			[]string{models.TransactionStatusApproved, models.TransactionStatusCompleted}).
		Group("day").Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, ErrNotFound)
	}
	out := make([]models.DailyPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.DailyPoint{
			Date:        row.Day.Format("2006-01-02"),
			Deposits:    row.Deposits,
			Withdrawals: row.Withdrawals,
		})
	}
	return out, nil
}

func (r *dashboardRepository) DailySignups(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Day   time.Time
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("date_trunc('day', created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("day").Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, ErrNotFound)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Day.Format("2006-01-02")] = row.Count
	}
	return out, nil
}
