package models

const (
	// MwUserKey is the echo context key the auth middleware stores the
	// public user projection under.
	MwUserKey = "currentUser"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)
