package models

// Identity is the requesting party, passed explicitly into policy checks and
// commands. The zero value is anonymous.
type Identity struct {
	UserID        uint
	Username      string
	IsAdmin       bool
	Authenticated bool
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity {
	return Identity{}
}

// IdentityOf returns the authenticated identity of u.
func IdentityOf(u *User) Identity {
	if u == nil {
		return Anonymous()
	}
	return Identity{
		UserID:        u.ID,
		Username:      u.Username,
		IsAdmin:       u.IsAdmin,
		Authenticated: true,
	}
}
