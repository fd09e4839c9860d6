package auth

import "iprofit/internal/models"

// TokenPair is returned by every successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AdminLoginResult struct {
	Admin  *models.Admin `json:"admin"`
	Tokens TokenPair     `json:"tokens"`
}

type UserLoginResult struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type SignupRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	Password     string `json:"password" validate:"required"`
	ReferralCode string `json:"referral_code,omitempty"`
	DeviceID     string `json:"device_id" validate:"required"`
	Platform     string `json:"platform,omitempty"`
}

type UserLoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required"`
	DeviceID string `json:"device_id" validate:"required"`
	Platform string `json:"platform,omitempty"`
}

// DeviceCheck reports whether a device may be used for another account.
type DeviceCheck struct {
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason,omitempty"`
	Accounts int64  `json:"accounts"`
	Limit    int    `json:"limit"`
}
