// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUserIDLen = 64

var ErrUserIDEmpty = errors.New("user id empty")

type UserID string

// PersonalRoom is the `user_<id>` channel some client features target,
// distinct from the plain user-id room created during setup.
func (u UserID) PersonalRoom() string { return "user_" + string(u) }

// Room is the plain user-id channel used for direct message fanout.
func (u UserID) Room() string { return string(u) }

func ParseUserID(raw string) (UserID, error) {
	if raw == "" {
		return "", ErrUserIDEmpty
	}
	if len(raw) > MaxUserIDLen {
		raw = raw[:MaxUserIDLen]
	}
	return UserID(raw), nil
}
