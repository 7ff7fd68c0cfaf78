package models

import "time"

// FriendshipEdge - одно направление дружбы. Дружба A и B - всегда пара строк
// (A->B, B->A), создаются и удаляются вместе.
// MessageLog - строки сообщений, каждая заканчивается \n, копия на обоих ребрах.
type FriendshipEdge struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    int64     `gorm:"not null;uniqueIndex:friendship_edge_pair_key" json:"owner_id"`
	PeerID     int64     `gorm:"not null;uniqueIndex:friendship_edge_pair_key;index" json:"peer_id"`
	MessageLog string    `gorm:"type:text;not null;default:''" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FriendshipEdge) TableName() string {
	return "friendship_edge"
}

// FriendRequest - заявка в друзья From -> To. Accepted=false - ожидает ответа.
// Не больше одной строки на направление.
type FriendRequest struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ToID      int64     `gorm:"not null;uniqueIndex:friend_request_pair_key" json:"to_id"`
	FromID    int64     `gorm:"not null;uniqueIndex:friend_request_pair_key;index" json:"from_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Accepted  bool      `gorm:"not null;default:false" json:"accepted"`
}

func (FriendRequest) TableName() string {
	return "friend_request"
}

// RelationshipStatus - отношение пары с точки зрения "me"
type RelationshipStatus string

const (
	StatusSelf     RelationshipStatus = "self"
	StatusFriends  RelationshipStatus = "friends"
	StatusIncoming RelationshipStatus = "incoming"
	StatusOutgoing RelationshipStatus = "outgoing"
	StatusNone     RelationshipStatus = "none"
)

// FriendsResponse - ответ getFriends
type FriendsResponse struct {
	User    ProfileSummary   `json:"user"`
	Friends []ProfileSummary `json:"friends"`
}

type StatusResponse struct {
	Username string             `json:"username"`
	Status   RelationshipStatus `json:"status"`
}

type RequestsResponse struct {
	Username string           `json:"username"`
	Incoming []ProfileSummary `json:"incoming"`
	Outgoing []ProfileSummary `json:"outgoing"`
}

// RequestOutcome: заявка отправлена или сразу принята (встречная заявка)
type RequestOutcome string

const (
	OutcomeSent     RequestOutcome = "sent"
	OutcomeAccepted RequestOutcome = "accepted"
)

type SendRequestResult struct {
	Message string         `json:"message"`
	Outcome RequestOutcome `json:"outcome"`
}
