package utils

import (
	"errors"
	"regexp"
)

// Compiled regular expressions for validation
var (
	// NeTEx style place ids, e.g. NSR:StopPlace:6505 or NSR:Quay:11969
	validPlaceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

	// Header values must stay on one line and avoid quoting tricks
	validClientNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidatePlaceID validates a journey-planner place id before it is
// interpolated into a query document.
func ValidatePlaceID(id string) error {
	if id == "" {
		return errors.New("place id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("place id too long (max 100 characters)")
	}

	if !validPlaceIDPattern.MatchString(id) {
		return errors.New("place id contains invalid characters")
	}

	return nil
}

// ValidateClientName validates the client identifier sent with every
// upstream request.
func ValidateClientName(name string) error {
	if name == "" {
		return errors.New("client name cannot be empty")
	}

	if len(name) > 100 {
		return errors.New("client name too long (max 100 characters)")
	}

	if !validClientNamePattern.MatchString(name) {
		return errors.New("client name contains invalid characters")
	}

	return nil
}
