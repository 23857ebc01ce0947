package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is an additive capability tag. Roles are only ever granted, never
// revoked.
type Role string

const (
	RoleBuyer         Role = "buyer"
	RoleGigWorker     Role = "gig_worker"
	RoleProductLister Role = "product_lister"
)

// User is a marketplace participant. Identity is issued by the external
// auth provider; a row is created on first authenticated contact.
type User struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	ExternalID   string    `json:"externalId"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ProfileImage string    `json:"profileImage"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole appends a role tag and reports whether the set changed. The
// set is monotonic: granting an already held role is a no-op.
func (u *User) GrantRole(role Role) bool {
	if u.HasRole(role) {
		return false
	}
	u.Roles = append(u.Roles, role)
	return true
}

// Public is the profile shape exposed to other users.
type Public struct {
	UserID       uuid.UUID `json:"userId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ProfileImage string    `json:"profileImage"`
}

// PublicProfile projects the fields visible to other users.
func (u *User) PublicProfile() Public {
	return Public{
		UserID:       u.UserID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}
