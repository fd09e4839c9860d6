package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardMetrics is the admin overview snapshot.
type DashboardMetrics struct {
	Users        UserMetrics        `json:"users"`
	Transactions TransactionMetrics `json:"transactions"`
	Loans        LoanMetrics        `json:"loans"`
	Tasks        TaskMetrics        `json:"tasks"`
	Support      SupportMetrics     `json:"support"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

type UserMetrics struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	NewToday   int64 `json:"new_today"`
	KYCPending int64 `json:"kyc_pending"`
}

type TransactionMetrics struct {
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	PendingDeposits    int64           `json:"pending_deposits"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
	FeesCollected      decimal.Decimal `json:"fees_collected"`
}

type LoanMetrics struct {
	Active      int64           `json:"active"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     int64           `json:"overdue"`
}

type TaskMetrics struct {
	PendingSubmissions int64 `json:"pending_submissions"`
}

type SupportMetrics struct {
	OpenTickets int64 `json:"open_tickets"`
}

// DailyPoint is one day of chart data.
type DailyPoint struct {
	Date        string          `json:"date"`
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Signups     int64           `json:"signups"`
}

// DashboardCharts is the series for the charts endpoint.
type DashboardCharts struct {
	Period string       `json:"period"`
	Points []DailyPoint `json:"points"`
}
