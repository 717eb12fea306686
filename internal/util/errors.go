package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists with this email or username")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAlreadyRated          = errors.New("you have already rated this resource")
	ErrInvalidRating         = errors.New("rating must be an integer between 1 and 5")
	ErrMissingResourceFields = errors.New("title, fileUrl, subject, gradeLevel and resourceType are required")
	ErrInvalidResourceType   = errors.New("invalid resource type")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrAlreadySubscribed     = errors.New("this email is already subscribed to our waitlist")
	ErrInvalidEmail          = errors.New("please provide a valid email address")
)
