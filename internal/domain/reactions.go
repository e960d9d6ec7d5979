package domain

// ReactionKind is a closed set of per-user markers.
type ReactionKind string

const (
	ReactionLike   ReactionKind = "like"
	ReactionUpvote ReactionKind = "upvote"
)

// ReactionKinds lists every supported kind.
var ReactionKinds = []ReactionKind{ReactionLike, ReactionUpvote}

// Valid reports whether k is a known kind.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionUpvote
}

// Reactions maps a kind to the users holding it, in the order they reacted.
type Reactions map[ReactionKind][]string

// Has reports whether userID holds kind.
func (r Reactions) Has(kind ReactionKind, userID string) bool {
	for _, id := range r[kind] {
		if id == userID {
			return true
		}
	}
	return false
}

// Count returns the number of users holding kind.
func (r Reactions) Count(kind ReactionKind) int {
	return len(r[kind])
}

// Toggle flips membership of userID for kind and returns the new membership.
func (r *Reactions) Toggle(kind ReactionKind, userID string) bool {
	if *r == nil {
		*r = Reactions{}
	}
	users := (*r)[kind]
	for i, id := range users {
		if id == userID {
			(*r)[kind] = append(users[:i:i], users[i+1:]...)
			return false
		}
	}
	(*r)[kind] = append(users, userID)
	return true
}
