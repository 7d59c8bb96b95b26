package domain

import "time"

// Account is a registered storefront user. The account id doubles as the
// cart owner key once the user is authenticated.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
