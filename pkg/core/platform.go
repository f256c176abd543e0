package core

import "strings"

// Platform identifies the mobile OS a session drives.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform accepts "android" or "ios" in any case.
func ParsePlatform(name string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(name))) {
	case PlatformAndroid:
		return PlatformAndroid, nil
	case PlatformIOS:
		return PlatformIOS, nil
	default:
		return "", ErrInvalidPlatform.WithMessage("invalid platform: " + name + " (expected android or ios)")
	}
}

// String returns the lowercase platform name
func (p Platform) String() string {
	return string(p)
}
