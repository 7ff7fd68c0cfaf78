package models

import "time"

// Profile - социальная идентичность пользователя. Учетные данные хранит сервис
// аутентификации, здесь только id и неизменяемый username.
type Profile struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex:profile_username_key" json:"username"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Profile) TableName() string {
	return "profile"
}

// ProfileSummary - пара {id, username} для списков
type ProfileSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Username: p.Username}
}
