package domain

// Credentials are posted to the admin signin endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SigninResult carries the session token. Expired is whatever the remote
// API sends (usually unix milliseconds) and is parsed by the caller.
type SigninResult struct {
	Token   string      `json:"token"`
	Expired interface{} `json:"expired"`
	UID     string      `json:"uid"`
}
