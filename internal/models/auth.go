package models

import "time"

type Profile struct {
	UserID    string    `json:"user_id" yaml:"user_id"`
	Handle    string    `json:"handle" yaml:"handle"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Auth mirrors the session slice of the external store. Zero value means
// "not initialized yet".
type Auth struct {
	IsInitialized bool     `json:"is_initialized"`
	TokenV3       string   `json:"-"`
	Profile       *Profile `json:"profile,omitempty"`
	// NewProfile is set when the profile was created after the configured
	// creation threshold.
	NewProfile bool `json:"is_new_profile"`
}

func (a Auth) HasToken() bool {
	return a.TokenV3 != ""
}

// NotificationsState is the loading state of the notifications slice.
type NotificationsState struct {
	IsLoading            bool `json:"is_loading"`
	IsCommunityLoading   bool `json:"is_community_loading"`
	Initialized          bool `json:"initialized"`
	CommunityInitialized bool `json:"community_initialized"`
}

// IsEmpty reports whether the notifications affordance has nothing to show yet.
func (n NotificationsState) IsEmpty() bool {
	return n.IsLoading || n.IsCommunityLoading || (!n.Initialized && !n.CommunityInitialized)
}
