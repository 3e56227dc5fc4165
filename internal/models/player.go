package models

// Player is the read-only profile projection owned by the profile
// service. Only public display fields are stored here.
type Player struct {
	ID           int    `db:"id" json:"id"`
	DisplayName  string `db:"display_name" json:"display_name"`
	ThumbnailURL string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Position     string `db:"position" json:"position,omitempty"`
	Private      bool   `db:"private" json:"private"`
}
