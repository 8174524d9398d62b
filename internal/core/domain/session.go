package domain

import "time"

// SessionType labels an audit entry.
type SessionType string

const (
	SessionLogin       SessionType = "login"
	SessionLogout      SessionType = "logout"
	SessionAdminLogin  SessionType = "admin_login"
	SessionAdminLogout SessionType = "admin_logout"
)

// ClientInfo describes the caller that triggered an audit entry.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// Session is an append-only login/logout audit record. It carries no
// authorization meaning.
type Session struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Type      SessionType `json:"type"`
	UserAgent string      `json:"userAgent,omitempty"`
	IP        string      `json:"ip,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SessionOwner is the subset of the user shown next to a session on the
// admin dashboard. Nil when the user no longer exists.
type SessionOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// SessionView is a session joined with its owner.
type SessionView struct {
	Session
	User *SessionOwner `json:"user"`
}

// RoleCounts is the per-role account breakdown shown on the admin dashboard.
type RoleCounts struct {
	Users    int64 `json:"totalUsers"`
	Artisans int64 `json:"totalArtisans"`
	Admins   int64 `json:"totalAdmins"`
	Banned   int64 `json:"totalBanned"`
	Total    int64 `json:"totalAccounts"`
}
