// Package mocks provides testify mocks of the repository layer.
package mocks

import (
	"context"
	"testing"

	"iprofit/internal/repositories"
)

// Store is an in-memory repositories.Store whose repositories are mocks.
// WithTx runs fn against the same mocks and returns its error.
type Store struct {
	UserRepo         *UserRepository
	AdminRepo        *AdminRepository
	DeviceRepo       *DeviceRepository
	TransactionRepo  *TransactionRepository
	ReferralRepo     *ReferralRepository
	PlanRepo         *PlanRepository
	LoanRepo         *LoanRepository
	TaskRepo         *TaskRepository
	NotificationRepo *NotificationRepository
	NewsRepo         *NewsRepository
	SupportRepo      *SupportRepository
	AuditRepo        *AuditRepository
	SettingRepo      *SettingRepository
	DashboardRepo    *DashboardRepository

	// TxCount counts WithTx calls.
	TxCount int
}

func NewStore() *Store {
	return &Store{
		UserRepo:         new(UserRepository),
		AdminRepo:        new(AdminRepository),
		DeviceRepo:       new(DeviceRepository),
		TransactionRepo:  new(TransactionRepository),
		ReferralRepo:     new(ReferralRepository),
		PlanRepo:         new(PlanRepository),
		LoanRepo:         new(LoanRepository),
		TaskRepo:         new(TaskRepository),
		NotificationRepo: new(NotificationRepository),
		NewsRepo:         new(NewsRepository),
		SupportRepo:      new(SupportRepository),
		AuditRepo:        new(AuditRepository),
		SettingRepo:      new(SettingRepository),
		DashboardRepo:    new(DashboardRepository),
	}
}

func (s *Store) Users() repositories.UserRepository                 { return s.UserRepo }
func (s *Store) Admins() repositories.AdminRepository               { return s.AdminRepo }
func (s *Store) Devices() repositories.DeviceRepository             { return s.DeviceRepo }
func (s *Store) Transactions() repositories.TransactionRepository   { return s.TransactionRepo }
func (s *Store) Referrals() repositories.ReferralRepository         { return s.ReferralRepo }
func (s *Store) Plans() repositories.PlanRepository                 { return s.PlanRepo }
func (s *Store) Loans() repositories.LoanRepository                 { return s.LoanRepo }
func (s *Store) Tasks() repositories.TaskRepository                 { return s.TaskRepo }
func (s *Store) Notifications() repositories.NotificationRepository { return s.NotificationRepo }
func (s *Store) News() repositories.NewsRepository                  { return s.NewsRepo }
func (s *Store) Support() repositories.SupportRepository            { return s.SupportRepo }
func (s *Store) Audit() repositories.AuditRepository                { return s.AuditRepo }
func (s *Store) Settings() repositories.SettingRepository           { return s.SettingRepo }
func (s *Store) Dashboard() repositories.DashboardRepository        { return s.DashboardRepo }

func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	s.TxCount++
	return fn(s)
}

// AssertExpectations checks every repository mock.
func (s *Store) AssertExpectations(t *testing.T) {
	t.Helper()
	s.UserRepo.AssertExpectations(t)
	s.AdminRepo.AssertExpectations(t)
	s.DeviceRepo.AssertExpectations(t)
	s.TransactionRepo.AssertExpectations(t)
	s.ReferralRepo.AssertExpectations(t)
	s.PlanRepo.AssertExpectations(t)
	s.LoanRepo.AssertExpectations(t)
	s.TaskRepo.AssertExpectations(t)
	s.NotificationRepo.AssertExpectations(t)
	s.NewsRepo.AssertExpectations(t)
	s.SupportRepo.AssertExpectations(t)
	s.AuditRepo.AssertExpectations(t)
	s.SettingRepo.AssertExpectations(t)
	s.DashboardRepo.AssertExpectations(t)
}

var _ repositories.Store = (*Store)(nil)
