package usermodel

import (
	"time"
)

type UserDataUserProfile struct {
	Bio string `json:"bio"`
	// Type unknown
	Website interface{} `json:"website"`
}

type UserDataUserSessionsItem struct {
	Device   string     `json:"device"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
	Client   *string    `json:"client,omitempty"`
}

type UserDataUser struct {
	Id        int64                      `json:"id"`
	Name      string                     `json:"name"`
	Email     string                     `json:"email"`
	CreatedAt time.Time                  `json:"created_at"`
	Roles     []string                   `json:"roles"`
	Profile   UserDataUserProfile        `json:"profile"`
	Sessions  []UserDataUserSessionsItem `json:"sessions"`
}

// UserData: Deeply nested structure
type UserData struct {
	User   UserDataUser `json:"user"`
	Active bool         `json:"active"`
}
