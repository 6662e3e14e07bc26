package ports

import "time"

type AuthService interface {
	IssueAdminToken(subject string, ttl time.Duration) (string, error)
	// VerifyAdminToken returns the token subject when the token is valid and
	// carries the admin role.
	VerifyAdminToken(token string) (string, error)
}
