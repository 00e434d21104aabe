// Package vote computes like/dislike membership transitions for a post.
//
// A user id is in at most one of the two sets. Voting the side the user is
// already on removes the vote; voting the other side moves it.
package vote

type Action string

const (
	Like    Action = "like"
	Dislike Action = "dislike"
)

func (a Action) Valid() bool {
	return a == Like || a == Dislike
}

// Outcome reports whether Apply added the requested vote or toggled it off.
type Outcome int

const (
	Added Outcome = iota + 1
	Removed
)

type Result struct {
	Likes    []string
	Dislikes []string
	Outcome  Outcome
}

// Apply returns the likes and dislikes after userID performs action. The
// input slices are never modified. Any copies of userID already present
// are collapsed, so the result satisfies the mutual exclusion invariant
// even for corrupted input.
func Apply(likes, dislikes []string, userID string, action Action) Result {
	same, other := likes, dislikes
	if action == Dislike {
		same, other = dislikes, likes
	}

	var newSame []string
	outcome := Added
	if Contains(same, userID) {
		newSame = without(same, userID)
		outcome = Removed
	} else {
		newSame = append(without(same, userID), userID)
	}
	newOther := without(other, userID)

	if action == Dislike {
		return Result{Likes: newOther, Dislikes: newSame, Outcome: outcome}
	}
	return Result{Likes: newSame, Dislikes: newOther, Outcome: outcome}
}

// Message is the text reported to the voter.
func Message(action Action, outcome Outcome) string {
	switch {
	case action == Like && outcome == Removed:
		return "Like removed"
	case action == Like:
		return "Post liked"
	case outcome == Removed:
		return "Dislike removed"
	default:
		return "Post disliked"
	}
}

func Contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func without(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
