// Package model defines the data shapes shared between the console's
// gateway, session store and CLI output.
package model

// User is the admin account record returned by the Nola login and
// user-info endpoints. Token is the bearer credential issued at login;
// everything else is display data.
type User struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description,omitempty"`
	CreateDate    int64  `json:"createDate"`
	LastLoginDate int64  `json:"lastLoginDate,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Token         string `json:"token"`
}
