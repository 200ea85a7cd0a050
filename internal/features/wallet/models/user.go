package models

// User is a registered player. Wallet stays empty until the user submits
// an address; prizes cannot be paid out before that.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Wallet   string `json:"wallet,omitempty"`
}
