package store

import "kareerbot/pkg/domain"

// Store defines persistence operations for user accounts and saved career
// plans.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByPhone(phone string) (domain.User, bool, error)

	// plans
	SavePlan(userID string, plan domain.Plan) error
	GetPlan(userID string) (domain.Plan, bool, error)
}

// SessionStore issues and validates session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
}
