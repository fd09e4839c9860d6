package models

// Admin roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleUser       = "user"
)

// Permission constants
const (
	PermissionDashboardRead = "dashboard:read"

	PermissionUsersRead  = "users:read"
	PermissionUsersWrite = "users:write"
	PermissionKYCReview  = "users:kyc"

	PermissionTransactionsRead    = "transactions:read"
	PermissionTransactionsApprove = "transactions:approve"

	PermissionLoansRead  = "loans:read"
	PermissionLoansWrite = "loans:write"

	PermissionReferralsRead  = "referrals:read"
	PermissionReferralsWrite = "referrals:write"

	PermissionPlansWrite = "plans:write"
	PermissionTasksWrite = "tasks:write"

	PermissionNotificationsSend = "notifications:send"
	PermissionNewsWrite         = "news:write"
	PermissionSupportWrite      = "support:write"

	PermissionAuditRead     = "audit:read"
	PermissionSettingsWrite = "settings:write"
)

// AllPermissions lists every admin permission.
var AllPermissions = []string{
	PermissionDashboardRead,
	PermissionUsersRead,
	PermissionUsersWrite,
	PermissionKYCReview,
	PermissionTransactionsRead,
	PermissionTransactionsApprove,
	PermissionLoansRead,
	PermissionLoansWrite,
	PermissionReferralsRead,
	PermissionReferralsWrite,
	PermissionPlansWrite,
	PermissionTasksWrite,
	PermissionNotificationsSend,
	PermissionNewsWrite,
	PermissionSupportWrite,
	PermissionAuditRead,
	PermissionSettingsWrite,
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleSuperAdmin:
		return append([]string(nil), AllPermissions...)
	case RoleAdmin:
		perms := make([]string, 0, len(AllPermissions))
		for _, p := range AllPermissions {
			if p != PermissionSettingsWrite {
				perms = append(perms, p)
			}
		}
		return perms
	case RoleModerator:
		return []string{
			PermissionDashboardRead,
			PermissionUsersRead,
			PermissionKYCReview,
			PermissionTransactionsRead,
			PermissionLoansRead,
			PermissionReferralsRead,
			PermissionTasksWrite,
			PermissionSupportWrite,
			PermissionNewsWrite,
		}
	default:
		return []string{}
	}
}
