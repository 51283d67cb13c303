package domain

// User is an identity issued by the identity service
type User struct {
	UID       string
	Anonymous bool
}

// Session holds the resolved identity of one page instance
type Session struct {
	UserID string
	Ready  bool
}
