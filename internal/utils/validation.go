package utils

import (
	"errors"
	"regexp"
)

// Allow alphanumeric, underscore, hyphen, dot - common in transit IDs
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateRadius validates radius values for location searches
func ValidateRadius(radius float64) error {
	if radius < 0 {
		return errors.New("radius must be non-negative")
	}

	// Reasonable maximum radius of 10km for transit searches
	if radius > 10000 {
		return errors.New("radius too large (max 10000 meters)")
	}

	return nil
}

// ValidateWalkingDistance validates a maximum walking distance in meters.
func ValidateWalkingDistance(meters float64) error {
	if meters <= 0 {
		return errors.New("maxWalkingDistance must be positive")
	}
	if meters > 5000 {
		return errors.New("maxWalkingDistance too large (max 5000 meters)")
	}
	return nil
}

// ValidateTransferCount validates a maximum transfer count.
func ValidateTransferCount(transfers int) error {
	if transfers < 0 {
		return errors.New("maxTransfers must be non-negative")
	}
	if transfers > 8 {
		return errors.New("maxTransfers too large (max 8)")
	}
	return nil
}

// ValidateCoordinatePair validates an origin or destination coordinate pair.
func ValidateCoordinatePair(lat, lon float64, prefix string, fieldErrors map[string][]string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	if err := ValidateLatitude(lat); err != nil {
		key := prefix + "Lat"
		fieldErrors[key] = append(fieldErrors[key], err.Error())
	}

	if err := ValidateLongitude(lon); err != nil {
		key := prefix + "Lon"
		fieldErrors[key] = append(fieldErrors[key], err.Error())
	}

	return fieldErrors
}
