package models

import "time"

// UserProfile enumerates the counting-team profiles.
type UserProfile string

const (
	ProfileAdministrador UserProfile = "ADMINISTRADOR"
	ProfileLider         UserProfile = "LIDER"
	ProfileAuxiliar      UserProfile = "AUXILIAR"
)

// ParseProfile maps a raw profile string onto the closed enumeration.
func ParseProfile(raw string) (UserProfile, bool) {
	switch UserProfile(raw) {
	case ProfileAdministrador, ProfileLider, ProfileAuxiliar:
		return UserProfile(raw), true
	}
	return "", false
}

// User is a counting-team member supplied by the identity collaborator.
type User struct {
	ID        int64       `db:"id" json:"id"`
	Username  string      `db:"username" json:"username"`
	FullName  string      `db:"full_name" json:"full_name"`
	Email     string      `db:"email" json:"email"`
	Profile   UserProfile `db:"profile" json:"profile"`
	StoreCode *string     `db:"store_code" json:"store_code,omitempty"`
	Active    bool        `db:"active" json:"active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// Store is a physical location master-data row.
type Store struct {
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
