package mocks

import (
	"context"
	"time"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// UserRepository is a testify mock of repositories.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	args := m.Called(ctx, code)
	r0, _ := args.Get(0).(*models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	args := m.Called(ctx, email, phone)
	r0, _ := args.Get(0).(bool)
	return r0, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) AdjustBalance(ctx context.Context, id uint, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *UserRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.User)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *UserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	r0, _ := args.Get(0).([]models.User)
	return r0, args.Error(1)
}

func (m *UserRepository) AssignPlan(ctx context.Context, planID uint, userIDs []uint) (int64, error) {
	args := m.Called(ctx, planID, userIDs)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

func (m *UserRepository) CountByPlan(ctx context.Context, planID uint) (int64, error) {
	args := m.Called(ctx, planID)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

// AdminRepository is a testify mock of repositories.AdminRepository.
type AdminRepository struct {
	mock.Mock
}

func (m *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *AdminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Admin)
	return r0, args.Error(1)
}

func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	args := m.Called(ctx, email)
	r0, _ := args.Get(0).(*models.Admin)
	return r0, args.Error(1)
}

func (m *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *AdminRepository) RecordFailedLogin(ctx context.Context, id uint, attempts int, lockedUntil *time.Time) error {
	args := m.Called(ctx, id, attempts, lockedUntil)
	return args.Error(0)
}

func (m *AdminRepository) RecordLogin(ctx context.Context, id uint, ip string, at time.Time) error {
	args := m.Called(ctx, id, ip, at)
	return args.Error(0)
}

func (m *AdminRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	args := m.Called(ctx)
	r0, _ := args.Get(0).([]models.Admin)
	return r0, args.Error(1)
}

// DeviceRepository is a testify mock of repositories.DeviceRepository.
type DeviceRepository struct {
	mock.Mock
}

func (m *DeviceRepository) CountAccounts(ctx context.Context, deviceID string) (int64, error) {
	args := m.Called(ctx, deviceID)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

func (m *DeviceRepository) IsBoundTo(ctx context.Context, deviceID string, userID uint) (bool, error) {
	args := m.Called(ctx, deviceID, userID)
	r0, _ := args.Get(0).(bool)
	return r0, args.Error(1)
}

func (m *DeviceRepository) IsBlocked(ctx context.Context, deviceID string) (bool, error) {
	args := m.Called(ctx, deviceID)
	r0, _ := args.Get(0).(bool)
	return r0, args.Error(1)
}

func (m *DeviceRepository) Register(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

// TransactionRepository is a testify mock of repositories.TransactionRepository.
type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Transaction)
	return r0, args.Error(1)
}

func (m *TransactionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Transaction)
	return r0, args.Error(1)
}

func (m *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.Transaction)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *TransactionRepository) Summary(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionSummary, error) {
	args := m.Called(ctx, filter)
	r0, _ := args.Get(0).([]models.TransactionSummary)
	return r0, args.Error(1)
}

func (m *TransactionRepository) SumWithdrawalsSince(ctx context.Context, userID uint, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, since)
	r0, _ := args.Get(0).(decimal.Decimal)
	return r0, args.Error(1)
}

func (m *TransactionRepository) GatewayReferenceInUse(ctx context.Context, gateway, reference string, excludeID uint) (bool, error) {
	args := m.Called(ctx, gateway, reference, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *TransactionRepository) CountApprovedDeposits(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

func (m *TransactionRepository) CountPendingOlderThan(ctx context.Context, txType string, before time.Time) (int64, error) {
	args := m.Called(ctx, txType, before)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

// ReferralRepository is a testify mock of repositories.ReferralRepository.
type ReferralRepository struct {
	mock.Mock
}

func (m *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	args := m.Called(ctx, referral)
	return args.Error(0)
}

func (m *ReferralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Referral)
	return r0, args.Error(1)
}

func (m *ReferralRepository) GetForUpdate(ctx context.Context, id uint) (*models.Referral, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Referral)
	return r0, args.Error(1)
}

func (m *ReferralRepository) GetByRefereeForUpdate(ctx context.Context, refereeID uint) (*models.Referral, error) {
	args := m.Called(ctx, refereeID)
	r0, _ := args.Get(0).(*models.Referral)
	return r0, args.Error(1)
}

func (m *ReferralRepository) Update(ctx context.Context, referral *models.Referral) error {
	args := m.Called(ctx, referral)
	return args.Error(0)
}

func (m *ReferralRepository) List(ctx context.Context, filter models.ReferralFilter, offset, limit int) ([]models.Referral, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.Referral)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *ReferralRepository) Overview(ctx context.Context, top int) (*models.ReferralOverview, error) {
	args := m.Called(ctx, top)
	r0, _ := args.Get(0).(*models.ReferralOverview)
	return r0, args.Error(1)
}

// PlanRepository is a testify mock of repositories.PlanRepository.
type PlanRepository struct {
	mock.Mock
}

func (m *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *PlanRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Plan)
	return r0, args.Error(1)
}

func (m *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *PlanRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PlanRepository) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	args := m.Called(ctx, activeOnly)
	r0, _ := args.Get(0).([]models.Plan)
	return r0, args.Error(1)
}

// LoanRepository is a testify mock of repositories.LoanRepository.
type LoanRepository struct {
	mock.Mock
}

func (m *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Loan)
	return r0, args.Error(1)
}

func (m *LoanRepository) GetForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Loan)
	return r0, args.Error(1)
}

func (m *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *LoanRepository) List(ctx context.Context, filter models.LoanFilter, offset, limit int) ([]models.Loan, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.Loan)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *LoanRepository) CreateSchedule(ctx context.Context, rows []models.LoanRepayment) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *LoanRepository) UnpaidInstallments(ctx context.Context, loanID uint) ([]models.LoanRepayment, error) {
	args := m.Called(ctx, loanID)
	r0, _ := args.Get(0).([]models.LoanRepayment)
	return r0, args.Error(1)
}

func (m *LoanRepository) UpdateRepayment(ctx context.Context, row *models.LoanRepayment) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *LoanRepository) DueLoanIDs(ctx context.Context, now time.Time) ([]uint, error) {
	args := m.Called(ctx, now)
	r0, _ := args.Get(0).([]uint)
	return r0, args.Error(1)
}

func (m *LoanRepository) DueInstallments(ctx context.Context, loanID uint, now time.Time) ([]models.LoanRepayment, error) {
	args := m.Called(ctx, loanID, now)
	r0, _ := args.Get(0).([]models.LoanRepayment)
	return r0, args.Error(1)
}

func (m *LoanRepository) CountOverdue(ctx context.Context, loanID uint) (int64, error) {
	args := m.Called(ctx, loanID)
	r0, _ := args.Get(0).(int64)
	return r0, args.Error(1)
}

// TaskRepository is a testify mock of repositories.TaskRepository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.Task)
	return r0, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]models.Task, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.Task)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *TaskRepository) IncrementCompletions(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) CreateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *TaskRepository) GetSubmissionForUpdate(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.TaskSubmission)
	return r0, args.Error(1)
}

func (m *TaskRepository) UpdateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *TaskRepository) HasSubmitted(ctx context.Context, taskID, userID uint) (bool, error) {
	args := m.Called(ctx, taskID, userID)
	r0, _ := args.Get(0).(bool)
	return r0, args.Error(1)
}

func (m *TaskRepository) ListSubmissions(ctx context.Context, taskID *uint, status string, offset, limit int) ([]models.TaskSubmission, int64, error) {
	args := m.Called(ctx, taskID, status, offset, limit)
	r0, _ := args.Get(0).([]models.TaskSubmission)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

// NotificationRepository is a testify mock of repositories.NotificationRepository.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepository) CreateBatch(ctx context.Context, ns []models.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

func (m *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.Notification)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

// NewsRepository is a testify mock of repositories.NewsRepository.
type NewsRepository struct {
	mock.Mock
}

func (m *NewsRepository) Create(ctx context.Context, news *models.News) error {
	args := m.Called(ctx, news)
	return args.Error(0)
}

func (m *NewsRepository) GetByID(ctx context.Context, id uint) (*models.News, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.News)
	return r0, args.Error(1)
}

func (m *NewsRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	r0, _ := args.Get(0).(bool)
	return r0, args.Error(1)
}

func (m *NewsRepository) Update(ctx context.Context, news *models.News) error {
	args := m.Called(ctx, news)
	return args.Error(0)
}

func (m *NewsRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NewsRepository) List(ctx context.Context, filter models.NewsFilter, offset, limit int) ([]models.News, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.News)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

// SupportRepository is a testify mock of repositories.SupportRepository.
type SupportRepository struct {
	mock.Mock
}

func (m *SupportRepository) CreateTicket(ctx context.Context, t *models.SupportTicket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *SupportRepository) GetTicket(ctx context.Context, id uint) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.SupportTicket)
	return r0, args.Error(1)
}

func (m *SupportRepository) UpdateTicket(ctx context.Context, t *models.SupportTicket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *SupportRepository) ListTickets(ctx context.Context, filter models.TicketFilter, offset, limit int) ([]models.SupportTicket, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.SupportTicket)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

func (m *SupportRepository) AddMessage(ctx context.Context, msg *models.TicketMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *SupportRepository) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *SupportRepository) GetFAQ(ctx context.Context, id uint) (*models.FAQ, error) {
	args := m.Called(ctx, id)
	r0, _ := args.Get(0).(*models.FAQ)
	return r0, args.Error(1)
}

func (m *SupportRepository) UpdateFAQ(ctx context.Context, f *models.FAQ) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *SupportRepository) DeleteFAQ(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SupportRepository) ListFAQs(ctx context.Context, category string, activeOnly bool) ([]models.FAQ, error) {
	args := m.Called(ctx, category, activeOnly)
	r0, _ := args.Get(0).([]models.FAQ)
	return r0, args.Error(1)
}

// AuditRepository is a testify mock of repositories.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter models.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	r0, _ := args.Get(0).([]models.AuditLog)
	r1, _ := args.Get(1).(int64)
	return r0, r1, args.Error(2)
}

// SettingRepository is a testify mock of repositories.SettingRepository.
type SettingRepository struct {
	mock.Mock
}

func (m *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	args := m.Called(ctx, key)
	r0, _ := args.Get(0).(*models.Setting)
	return r0, args.Error(1)
}

func (m *SettingRepository) All(ctx context.Context) ([]models.Setting, error) {
	args := m.Called(ctx)
	r0, _ := args.Get(0).([]models.Setting)
	return r0, args.Error(1)
}

func (m *SettingRepository) Upsert(ctx context.Context, settings []models.Setting) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// DashboardRepository is a testify mock of repositories.DashboardRepository.
type DashboardRepository struct {
	mock.Mock
}

func (m *DashboardRepository) Metrics(ctx context.Context, dayStart time.Time) (*models.DashboardMetrics, error) {
	args := m.Called(ctx, dayStart)
	r0, _ := args.Get(0).(*models.DashboardMetrics)
	return r0, args.Error(1)
}

func (m *DashboardRepository) DailyVolumes(ctx context.Context, since time.Time) ([]models.DailyPoint, error) {
	args := m.Called(ctx, since)
	r0, _ := args.Get(0).([]models.DailyPoint)
	return r0, args.Error(1)
}

func (m *DashboardRepository) DailySignups(ctx context.Context, since time.Time) (map[string]int64, error) {
	args := m.Called(ctx, since)
	r0, _ := args.Get(0).(map[string]int64)
	return r0, args.Error(1)
}
