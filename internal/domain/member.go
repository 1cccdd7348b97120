package domain

// Member is a live participant of a room group.
// No transport or lifecycle logic here.
type Member struct {
	User Identity
}

func NewMember(user Identity) *Member {
	return &Member{User: user}
}
