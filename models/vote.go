package models

// Vote is the direction of a member's vote on a message
type Vote int8

const (
	VoteNone     Vote = 0
	VoteUpvote   Vote = 1
	VoteDownvote Vote = -1
)

// Value returns +1 for an upvote, -1 for a downvote and 0 for no vote
func (v Vote) Value() int {
	return int(v)
}

// Opposite returns the other direction, or VoteNone for VoteNone
func (v Vote) Opposite() Vote {
	return -v
}

func (v Vote) String() string {
	switch v {
	case VoteUpvote:
		return "upvote"
	case VoteDownvote:
		return "downvote"
	default:
		return "none"
	}
}

// VoteRecord is a member's current vote on a message
type VoteRecord struct {
	MessageID int64 `db:"message_id"`
	ChannelID int64 `db:"channel_id"`
	MemberID  int64 `db:"member_id"`
	Vote      Vote  `db:"vote"`
}

// VotedMessage identifies a message that has at least one vote row
type VotedMessage struct {
	MessageID int64 `db:"message_id"`
	ChannelID int64 `db:"channel_id"`
}
