package domain

// Member represents an identity's presence in a live meeting room.
// No transport or lifecycle logic here.
type Member struct {
	Identity *Identity
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(identity *Identity) *Member {
	return &Member{Identity: identity}
}
