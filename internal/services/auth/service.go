package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
	referralRetries = 5
)

type Service interface {
	AdminLogin(ctx context.Context, email, password, ip string) (*AdminLoginResult, error)
	Signup(ctx context.Context, req SignupRequest, ip string) (*UserLoginResult, error)
	UserLogin(ctx context.Context, req UserLoginRequest, ip string) (*UserLoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, claims *models.UserClaims) error
	CheckDevice(ctx context.Context, deviceID string, userID *uint) (*DeviceCheck, error)

	// Authenticate validates an access token and the current token version.
	Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error)
}

// SettingsReader is the part of the settings service auth needs.
type SettingsReader interface {
	Int(ctx context.Context, key string) int
	Decimal(ctx context.Context, key string) decimal.Decimal
}

type service struct {
	store    repositories.Store
	tokens   *utils.TokenIssuer
	settings SettingsReader
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store repositories.Store, tokens *utils.TokenIssuer, settings SettingsReader, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if tokens == nil {
		panic("token issuer is required")
	}
	if settings == nil {
		panic("settings are required")
	}
	return &service{
		store:    store,
		tokens:   tokens,
		settings: settings,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

func (s *service) AdminLogin(ctx context.Context, email, password, ip string) (*AdminLoginResult, error) {
	admin, err := s.store.Admins().GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAdminNotFound) {
			s.log.Info("admin login failed: unknown email", zap.String("ip", ip))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if admin.IsLocked(now) {
		return nil, ErrAccountLocked
	}
	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		attempts := admin.FailedLoginAttempts
		if admin.LockedUntil != nil {
			// previous lock has expired, start counting again
			attempts = 0
		}
		attempts++
		var lockedUntil *time.Time
		if attempts >= MaxFailedLogins {
			until := now.Add(LockoutDuration)
			lockedUntil = &until
			s.log.Warn("admin account locked",
				zap.Uint("admin_id", admin.ID),
				zap.Int("attempts", attempts),
				zap.String("ip", ip))
		}
		if err := s.store.Admins().RecordFailedLogin(ctx, admin.ID, attempts, lockedUntil); err != nil {
			s.log.Error("failed to record failed login", zap.Uint("admin_id", admin.ID), zap.Error(err))
		}
		if lockedUntil != nil {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.store.Admins().RecordLogin(ctx, admin.ID, ip, now); err != nil {
		s.log.Error("failed to record login", zap.Uint("admin_id", admin.ID), zap.Error(err))
	}
	admin.FailedLoginAttempts = 0
	admin.LockedUntil = nil
	admin.LastLoginAt = &now
	admin.LastLoginIP = ip

	pair, err := s.issue(adminClaims(admin))
	if err != nil {
		return nil, err
	}
	s.log.Info("admin logged in", zap.Uint("admin_id", admin.ID), zap.String("ip", ip))
	return &AdminLoginResult{Admin: admin, Tokens: *pair}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest, ip string) (*UserLoginResult, error) {
	exists, err := s.store.Users().ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	check, err := s.CheckDevice(ctx, req.DeviceID, nil)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, deviceError(check)
	}

	var referrer *models.User
	if req.ReferralCode != "" {
		referrer, err = s.store.Users().GetByReferralCode(ctx, req.ReferralCode)
		if err != nil {
			if apperrors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrInvalidReferral
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     string(hash),
		Status:       models.UserStatusActive,
		KYCStatus:    models.KYCStatusPending,
		Balance:      decimal.Zero,
		DeviceID:     req.DeviceID,
		TokenVersion: 1,
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}
	bonus := s.settings.Decimal(ctx, settings.KeySignupBonus)

	for attempt := 1; ; attempt++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate referral code: %w", err)
		}
		user.ID = 0
		user.ReferralCode = code

		err = s.store.WithTx(ctx, func(tx repositories.Store) error {
			return s.createAccount(ctx, tx, user, referrer, bonus, req, ip)
		})
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrDuplicate) && attempt < referralRetries {
			// most likely a referral code collision; email and phone were checked above
			continue
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	pair, err := s.issue(userClaims(user))
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed up",
		zap.Uint("user_id", user.ID),
		zap.Bool("referred", referrer != nil))
	return &UserLoginResult{User: user, Tokens: *pair}, nil
}

func (s *service) createAccount(ctx context.Context, tx repositories.Store, user *models.User, referrer *models.User,
	bonus decimal.Decimal, req SignupRequest, ip string) error {
	if err := tx.Users().Create(ctx, user); err != nil {
		return err
	}
	if err := tx.Devices().Register(ctx, &models.Device{
		DeviceID: req.DeviceID,
		UserID:   user.ID,
		Platform: req.Platform,
		LastIP:   ip,
	}); err != nil {
		return err
	}
	if referrer != nil {
		if err := tx.Referrals().Create(ctx, &models.Referral{
			ReferrerID:  referrer.ID,
			RefereeID:   user.ID,
			BonusAmount: decimal.Zero,
			Status:      models.ReferralStatusPending,
		}); err != nil {
			return err
		}
	}
	if bonus.IsPositive() {
		now := s.now()
		if err := tx.Transactions().Create(ctx, &models.Transaction{
			UserID:      user.ID,
			Type:        models.TransactionTypeBonus,
			Amount:      bonus,
			Fee:         decimal.Zero,
			NetAmount:   bonus,
			Status:      models.TransactionStatusCompleted,
			Gateway:     models.GatewaySystem,
			Reference:   utils.NewReference(),
			Description: "Signup bonus",
			ProcessedAt: &now,
		}); err != nil {
			return err
		}
		if err := tx.Users().AdjustBalance(ctx, user.ID, bonus); err != nil {
			return err
		}
		user.Balance = bonus
	}
	return nil
}

func (s *service) UserLogin(ctx context.Context, req UserLoginRequest, ip string) (*UserLoginResult, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case req.Email != "":
		user, err = s.store.Users().GetByEmail(ctx, req.Email)
	case req.Phone != "":
		user, err = s.store.Users().GetByPhone(ctx, req.Phone)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.log.Info("user login failed: wrong password", zap.Uint("user_id", user.ID), zap.String("ip", ip))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountDisabled.WithMessage("account is %s", user.Status)
	}

	check, err := s.CheckDevice(ctx, req.DeviceID, &user.ID)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, deviceError(check)
	}

	now := s.now()
	if err := s.store.Devices().Register(ctx, &models.Device{
		DeviceID: req.DeviceID,
		UserID:   user.ID,
		Platform: req.Platform,
		LastIP:   ip,
	}); err != nil {
		return nil, err
	}
	if err := s.store.Users().UpdateFields(ctx, user.ID, map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": ip,
		"device_id":     req.DeviceID,
	}); err != nil {
		s.log.Error("failed to record user login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now
	user.LastLoginIP = ip

	pair, err := s.issue(userClaims(user))
	if err != nil {
		return nil, err
	}
	return &UserLoginResult{User: user, Tokens: *pair}, nil
}

// CheckDevice applies max_accounts_per_device. A device already bound to
// userID is always allowed unless blocked.
func (s *service) CheckDevice(ctx context.Context, deviceID string, userID *uint) (*DeviceCheck, error) {
	limit := s.settings.Int(ctx, settings.KeyMaxAccountsPerDevice)
	if limit <= 0 {
		limit = 1
	}
	check := &DeviceCheck{Limit: limit}
	if deviceID == "" {
		check.Reason = "device id is required"
		return check, nil
	}

	blocked, err := s.store.Devices().IsBlocked(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if blocked {
		check.Reason = "device is blocked"
		return check, nil
	}

	count, err := s.store.Devices().CountAccounts(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	check.Accounts = count

	if userID != nil {
		bound, err := s.store.Devices().IsBoundTo(ctx, deviceID, *userID)
		if err != nil {
			return nil, err
		}
		if bound {
			check.Allowed = true
			return check, nil
		}
	}
	if count >= int64(limit) {
		check.Reason = fmt.Sprintf("device already has %d account(s), limit is %d", count, limit)
		return check, nil
	}
	check.Allowed = true
	return check, nil
}

func deviceError(check *DeviceCheck) error {
	if check.Reason == "device is blocked" {
		return ErrDeviceBlocked
	}
	return ErrDeviceLimit.WithMessage(check.Reason)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	fresh, err := s.reload(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.issue(fresh)
}

func (s *service) Logout(ctx context.Context, claims *models.UserClaims) error {
	if claims == nil {
		return ErrInvalidToken
	}
	if claims.IsAdmin() {
		return s.store.Admins().IncrementTokenVersion(ctx, claims.UserID)
	}
	return s.store.Users().IncrementTokenVersion(ctx, claims.UserID)
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*models.UserClaims, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.reload(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// reload fetches the principal behind claims and checks it is still valid.
func (s *service) reload(ctx context.Context, claims *models.UserClaims) (*models.UserClaims, error) {
	if claims.IsAdmin() {
		admin, err := s.store.Admins().GetByID(ctx, claims.UserID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrAdminNotFound) {
				return nil, ErrInvalidToken
			}
			return nil, err
		}
		if admin.TokenVersion != claims.TokenVersion {
			return nil, ErrTokenRevoked
		}
		if !admin.IsActive {
			return nil, ErrAccountDisabled
		}
		return adminClaims(admin), nil
	}

	user, err := s.store.Users().GetCredentials(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	if user.Status == models.UserStatusBanned {
		return nil, ErrAccountDisabled.WithMessage("account is %s", user.Status)
	}
	return userClaims(user), nil
}

func (s *service) issue(claims *models.UserClaims) (*TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokens(claims)
	if err != nil {
		s.log.Error("failed to generate tokens", zap.Uint("subject_id", claims.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func adminClaims(a *models.Admin) *models.UserClaims {
	return &models.UserClaims{
		UserID:       a.ID,
		Email:        a.Email,
		Role:         a.Role,
		SubjectType:  models.SubjectAdmin,
		Permissions:  a.EffectivePermissions(),
		TokenVersion: a.TokenVersion,
	}
}

func userClaims(u *models.User) *models.UserClaims {
	return &models.UserClaims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         models.RoleUser,
		SubjectType:  models.SubjectUser,
		TokenVersion: u.TokenVersion,
	}
}
