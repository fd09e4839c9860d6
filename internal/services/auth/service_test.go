package auth

import (
	"context"
	"testing"
	"time"

	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeSettings struct {
	ints     map[string]int
	decimals map[string]decimal.Decimal
}

func (f fakeSettings) Int(_ context.Context, key string) int {
	if v, ok := f.ints[key]; ok {
		return v
	}
	return 1
}

func (f fakeSettings) Decimal(_ context.Context, key string) decimal.Decimal {
	return f.decimals[key]
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *mocks.Store, st fakeSettings) (*service, *utils.TokenIssuer) {
	t.Helper()
	issuer, err := utils.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	svc := NewService(store, issuer, st, nil).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, issuer
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success resets counters and returns tokens", func(t *testing.T) {
		store := mocks.NewStore()
		svc, issuer := newTestService(t, store, fakeSettings{})
		admin := &models.Admin{Email: "root@iprofit.test", Password: hash(t, "S3cret!pass"), Role: models.RoleAdmin, IsActive: true, TokenVersion: 3}
		admin.ID = 9
		store.AdminRepo.On("GetByEmail", ctx, "root@iprofit.test").Return(admin, nil)
		store.AdminRepo.On("RecordLogin", ctx, uint(9), "1.2.3.4", fixedNow).Return(nil)

		res, err := svc.AdminLogin(ctx, "root@iprofit.test", "S3cret!pass", "1.2.3.4")
		require.NoError(t, err)

		claims, err := issuer.ParseAccessToken(res.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(9), claims.UserID)
		assert.True(t, claims.IsAdmin())
		assert.Equal(t, 3, claims.TokenVersion)
		assert.Contains(t, claims.Permissions, models.PermissionTransactionsApprove)
		assert.Equal(t, "Bearer", res.Tokens.TokenType)
		store.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		store.AdminRepo.On("GetByEmail", ctx, "x@y.z").Return(nil, repositories.ErrAdminNotFound)

		_, err := svc.AdminLogin(ctx, "x@y.z", "whatever", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("fifth failure locks the account", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		admin := &models.Admin{Email: "a@b.c", Password: hash(t, "right-password1!"), IsActive: true, FailedLoginAttempts: 4}
		admin.ID = 2
		store.AdminRepo.On("GetByEmail", ctx, "a@b.c").Return(admin, nil)
		until := fixedNow.Add(LockoutDuration)
		store.AdminRepo.On("RecordFailedLogin", ctx, uint(2), 5, &until).Return(nil)

		_, err := svc.AdminLogin(ctx, "a@b.c", "wrong", "")
		assert.ErrorIs(t, err, ErrAccountLocked)
		store.AssertExpectations(t)
	})

	t.Run("failure below threshold", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		admin := &models.Admin{Email: "a@b.c", Password: hash(t, "right-password1!"), IsActive: true, FailedLoginAttempts: 1}
		admin.ID = 2
		store.AdminRepo.On("GetByEmail", ctx, "a@b.c").Return(admin, nil)
		store.AdminRepo.On("RecordFailedLogin", ctx, uint(2), 2, (*time.Time)(nil)).Return(nil)

		_, err := svc.AdminLogin(ctx, "a@b.c", "wrong", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		store.AssertExpectations(t)
	})

	t.Run("locked account refuses even the right password", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		until := fixedNow.Add(5 * time.Minute)
		admin := &models.Admin{Email: "a@b.c", Password: hash(t, "right-password1!"), IsActive: true, LockedUntil: &until}
		store.AdminRepo.On("GetByEmail", ctx, "a@b.c").Return(admin, nil)

		_, err := svc.AdminLogin(ctx, "a@b.c", "right-password1!", "")
		assert.ErrorIs(t, err, ErrAccountLocked)
		store.AdminRepo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckDevice(t *testing.T) {
	ctx := context.Background()
	userID := uint(5)

	tests := []struct {
		name     string
		userID   *uint
		blocked  bool
		accounts int64
		bound    bool
		limit    int
		allowed  bool
	}{
		{name: "fresh device", accounts: 0, limit: 1, allowed: true},
		{name: "device at limit", accounts: 1, limit: 1, allowed: false},
		{name: "device under raised limit", accounts: 1, limit: 2, allowed: true},
		{name: "blocked device", blocked: true, limit: 3, allowed: false},
		{name: "owner may reuse a full device", userID: &userID, accounts: 1, bound: true, limit: 1, allowed: true},
		{name: "other user on full device", userID: &userID, accounts: 1, bound: false, limit: 1, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewStore()
			svc, _ := newTestService(t, store, fakeSettings{ints: map[string]int{settings.KeyMaxAccountsPerDevice: tt.limit}})
			store.DeviceRepo.On("IsBlocked", ctx, "dev-1").Return(tt.blocked, nil)
			store.DeviceRepo.On("CountAccounts", ctx, "dev-1").Return(tt.accounts, nil).Maybe()
			if tt.userID != nil {
				store.DeviceRepo.On("IsBoundTo", ctx, "dev-1", *tt.userID).Return(tt.bound, nil)
			}

			check, err := svc.CheckDevice(ctx, "dev-1", tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, check.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, check.Reason)
			}
		})
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	req := SignupRequest{
		Name:         "Jane",
		Email:        "jane@example.com",
		Phone:        "+8801700000000",
		Password:     "Str0ng!pass",
		ReferralCode: "REFCODE1",
		DeviceID:     "dev-9",
	}

	t.Run("creates user, device, referral and signup bonus", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{decimals: map[string]decimal.Decimal{
			settings.KeySignupBonus: decimal.NewFromInt(50),
		}})
		referrer := &models.User{ReferralCode: "REFCODE1"}
		referrer.ID = 3

		store.UserRepo.On("ExistsByEmailOrPhone", ctx, req.Email, req.Phone).Return(false, nil)
		store.DeviceRepo.On("IsBlocked", ctx, "dev-9").Return(false, nil)
		store.DeviceRepo.On("CountAccounts", ctx, "dev-9").Return(int64(0), nil)
		store.UserRepo.On("GetByReferralCode", ctx, "REFCODE1").Return(referrer, nil)
		store.UserRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 11 }).
			Return(nil)
		store.DeviceRepo.On("Register", ctx, mock.MatchedBy(func(d *models.Device) bool {
			return d.DeviceID == "dev-9" && d.UserID == 11
		})).Return(nil)
		store.ReferralRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Referral) bool {
			return r.ReferrerID == 3 && r.RefereeID == 11 && r.Status == models.ReferralStatusPending
		})).Return(nil)
		store.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.Type == models.TransactionTypeBonus && tx.Status == models.TransactionStatusCompleted
		})).Return(nil)
		store.UserRepo.On("AdjustBalance", ctx, uint(11), decimal.NewFromInt(50)).Return(nil)

		res, err := svc.Signup(ctx, req, "9.9.9.9")
		require.NoError(t, err)
		assert.Equal(t, uint(11), res.User.ID)
		assert.Equal(t, uint(3), *res.User.ReferredBy)
		assert.Len(t, res.User.ReferralCode, 8)
		assert.NotEqual(t, req.Password, res.User.Password)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		store.AssertExpectations(t)
	})

	t.Run("duplicate email or phone", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		store.UserRepo.On("ExistsByEmailOrPhone", ctx, req.Email, req.Phone).Return(true, nil)

		_, err := svc.Signup(ctx, req, "")
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("unknown referral code", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		store.UserRepo.On("ExistsByEmailOrPhone", ctx, req.Email, req.Phone).Return(false, nil)
		store.DeviceRepo.On("IsBlocked", ctx, "dev-9").Return(false, nil)
		store.DeviceRepo.On("CountAccounts", ctx, "dev-9").Return(int64(0), nil)
		store.UserRepo.On("GetByReferralCode", ctx, "REFCODE1").Return(nil, repositories.ErrUserNotFound)

		_, err := svc.Signup(ctx, req, "")
		assert.ErrorIs(t, err, ErrInvalidReferral)
		store.UserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("device limit reached", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newTestService(t, store, fakeSettings{})
		store.UserRepo.On("ExistsByEmailOrPhone", ctx, req.Email, req.Phone).Return(false, nil)
		store.DeviceRepo.On("IsBlocked", ctx, "dev-9").Return(false, nil)
		store.DeviceRepo.On("CountAccounts", ctx, "dev-9").Return(int64(1), nil)

		_, err := svc.Signup(ctx, req, "")
		assert.ErrorIs(t, err, ErrDeviceLimit)
	})
}

func TestRefreshAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc, issuer := newTestService(t, store, fakeSettings{})

	user := &models.User{Email: "u@x.io", Status: models.UserStatusActive, TokenVersion: 2}
	user.ID = 4
	access, refresh, err := issuer.GenerateTokens(userClaims(user))
	require.NoError(t, err)

	store.UserRepo.On("GetCredentials", ctx, uint(4)).Return(user, nil)

	claims, err := svc.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.UserID)

	pair, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token must not work as a refresh token")

	revoked := *user
	revoked.TokenVersion = 3
	store2 := mocks.NewStore()
	svc2, _ := newTestService(t, store2, fakeSettings{})
	svc2.tokens = issuer
	store2.UserRepo.On("GetCredentials", ctx, uint(4)).Return(&revoked, nil)
	_, err = svc2.Authenticate(ctx, access)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc, _ := newTestService(t, store, fakeSettings{})

	store.AdminRepo.On("IncrementTokenVersion", ctx, uint(1)).Return(nil)
	store.UserRepo.On("IncrementTokenVersion", ctx, uint(2)).Return(nil)

	require.NoError(t, svc.Logout(ctx, &models.UserClaims{UserID: 1, SubjectType: models.SubjectAdmin}))
	require.NoError(t, svc.Logout(ctx, &models.UserClaims{UserID: 2, SubjectType: models.SubjectUser}))
	store.AssertExpectations(t)
}
