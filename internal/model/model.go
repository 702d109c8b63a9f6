// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued session token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// User is a shop account as persisted. Password holds the encoded password hash,
// TotpSecret the second-factor seed; both are nil when never set.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Password     *string    `json:"password,omitempty"`
	Role         string     `json:"role"`
	DeluxeToken  string     `json:"deluxeToken"`
	LastLoginIP  string     `json:"lastLoginIp"`
	ProfileImage string     `json:"profileImage"`
	TotpSecret   *string    `json:"totpSecret,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

// Roles.
const (
	RoleCustomer   = "customer"
	RoleDeluxe     = "deluxe"
	RoleAccounting = "accounting"
	RoleAdmin      = "admin"
)

// Challenge is a persisted security exercise flag.
type Challenge struct {
	Key      string
	Name     string
	Solved   bool
	SolvedAt *time.Time
}

// Mint records a wallet that minted the challenge NFT.
type Mint struct {
	Address  string
	TxHash   string
	MintedAt time.Time
}
