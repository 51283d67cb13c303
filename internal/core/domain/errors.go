package domain

import "errors"

// ErrWrongPassword is an error thrown when the gate password does not match
var ErrWrongPassword = errors.New("wrong password")

// ErrInvalidFileType is an error thrown when file type is invalid
var ErrInvalidFileType = errors.New("invalid file type")

// ErrUserNotFound is an error thrown when a user is not found
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidToken is an error thrown when a custom token is unknown or expired
var ErrInvalidToken = errors.New("invalid custom token")

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrPageNotFound is an error thrown when a page instance is not mounted
var ErrPageNotFound = errors.New("page not found")

// ErrObjectNotFound is an error thrown when a stored object does not exist
var ErrObjectNotFound = errors.New("object not found")
