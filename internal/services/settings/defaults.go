package settings

import "iprofit/internal/models"

// Known setting keys
const (
	KeyDepositFeePercent    = "deposit_fee_percent"
	KeyMinDeposit           = "min_deposit"
	KeyMaxDeposit           = "max_deposit"
	KeyWithdrawalFeePercent = "withdrawal_fee_percent"
	KeyWithdrawalFeeFixed   = "withdrawal_fee_fixed"
	KeyMinWithdrawalFee     = "min_withdrawal_fee"
	KeyMinWithdrawal        = "min_withdrawal"
	KeyMaxWithdrawal        = "max_withdrawal"
	KeyDailyWithdrawalLimit = "daily_withdrawal_limit"
	KeyReferralBonusPercent = "referral_bonus_percent"
	KeySignupBonus          = "signup_bonus"
	KeyMaxAccountsPerDevice = "max_accounts_per_device"
	KeyLoanMaxAmount        = "loan_max_amount"
	KeyLoanMinCreditScore   = "loan_min_credit_score"
	KeyLoanLateFeePercent   = "loan_late_fee_percent"
	KeyMaintenanceMode      = "maintenance_mode"
	KeyPlatformName         = "platform_name"
)

const (
	categoryFinancial = "financial"
	categorySecurity  = "security"
	categoryReferral  = "referral"
	categoryLoan      = "loan"
	categorySystem    = "system"
)

// Defaults are used whenever a key has no stored row.
var Defaults = map[string]models.Setting{
	KeyDepositFeePercent:    {Key: KeyDepositFeePercent, Value: "0", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Deposit fee in percent"},
	KeyMinDeposit:           {Key: KeyMinDeposit, Value: "10", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Minimum deposit amount"},
	KeyMaxDeposit:           {Key: KeyMaxDeposit, Value: "100000", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Maximum deposit amount"},
	KeyWithdrawalFeePercent: {Key: KeyWithdrawalFeePercent, Value: "2", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Withdrawal fee in percent"},
	KeyWithdrawalFeeFixed:   {Key: KeyWithdrawalFeeFixed, Value: "0", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Flat fee added to each withdrawal"},
	KeyMinWithdrawalFee:     {Key: KeyMinWithdrawalFee, Value: "1", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Lower bound on the withdrawal fee"},
	KeyMinWithdrawal:        {Key: KeyMinWithdrawal, Value: "100", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Minimum withdrawal amount"},
	KeyMaxWithdrawal:        {Key: KeyMaxWithdrawal, Value: "100000", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Maximum withdrawal amount"},
	KeyDailyWithdrawalLimit: {Key: KeyDailyWithdrawalLimit, Value: "200000", Type: models.SettingTypeNumber, Category: categoryFinancial, Description: "Total withdrawals allowed per user per day"},
	KeyReferralBonusPercent: {Key: KeyReferralBonusPercent, Value: "5", Type: models.SettingTypeNumber, Category: categoryReferral, Description: "Referrer bonus as a percent of the first deposit"},
	KeySignupBonus:          {Key: KeySignupBonus, Value: "0", Type: models.SettingTypeNumber, Category: categoryReferral, Description: "Bonus credited on signup"},
	KeyMaxAccountsPerDevice: {Key: KeyMaxAccountsPerDevice, Value: "1", Type: models.SettingTypeNumber, Category: categorySecurity, Description: "Accounts allowed per device"},
	KeyLoanMaxAmount:        {Key: KeyLoanMaxAmount, Value: "500000", Type: models.SettingTypeNumber, Category: categoryLoan, Description: "Largest loan principal"},
	KeyLoanMinCreditScore:   {Key: KeyLoanMinCreditScore, Value: "600", Type: models.SettingTypeNumber, Category: categoryLoan, Description: "Minimum credit score to apply"},
	KeyLoanLateFeePercent:   {Key: KeyLoanLateFeePercent, Value: "2", Type: models.SettingTypeNumber, Category: categoryLoan, Description: "Late fee in percent of an overdue installment"},
	KeyMaintenanceMode:      {Key: KeyMaintenanceMode, Value: "false", Type: models.SettingTypeBoolean, Category: categorySystem, Description: "Blocks user-facing requests"},
	KeyPlatformName:         {Key: KeyPlatformName, Value: "iProfit", Type: models.SettingTypeString, Category: categorySystem, Description: "Display name used in emails"},
}
