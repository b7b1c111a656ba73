package common

// ClientInfo identifies the request origin for audit trails.
type ClientInfo struct {
	IP        string
	UserAgent string
}
