package domain

// TokenPair is the access/refresh pair returned on login and refresh.
type TokenPair struct {
	Access  string
	Refresh string
}
