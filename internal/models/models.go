package models

import "time"

// User represents one partner. Account creation is anonymous: the user gets a
// short pairing code and a long-lived token.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Code        string    `json:"code"`
	Token       string    `json:"token,omitempty"`
	PushToken   *string   `json:"push_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pair links the two partners sharing a dashboard.
type Pair struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Track is a song returned by the music catalog search.
type Track struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	ITunesURL  string `json:"itunes_url,omitempty"`
}

// PresenceView is a user_presence document with the derived status injected.
type PresenceView struct {
	ID       string    `json:"id"`
	UserName string    `json:"user_name"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

// CheckIn is one partner's daily mood entry. At most one exists per
// (user_name, date).
type CheckIn struct {
	UserName     string `json:"user_name"`
	Date         string `json:"date"` // yyyy-mm-dd
	Emotion      string `json:"emotion"`
	EnergyLevel  int    `json:"energy_level"`
	LoveLanguage string `json:"love_language"`
}

// Insight is one generated relationship insight.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
