package constants

import "errors"

// Configuration errors.
var (
	ErrNoURLConfigured  = errors.New("no Review Board URL given, pass it as an argument or set url in the config")
	ErrUnknownFormat    = errors.New("unknown output format")
	ErrInvalidParameter = errors.New("parameter must have the form key=value")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Authentication errors.
var (
	ErrNoCSRFToken   = errors.New("login form did not set a csrftoken cookie")
	ErrLoginRejected = errors.New("login rejected")
	ErrNoCredentials = errors.New("username and password are required")
)
