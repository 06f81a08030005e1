package step

import (
	"fmt"
	"strings"
)

// Platform is a simulated OS family, as simctl names it in runtime names
// (e.g. "iOS 14.0").
type Platform string

const (
	iOS     Platform = "iOS"
	tvOS    Platform = "tvOS"
	watchOS Platform = "watchOS"
)

func parsePlatform(platform string) (Platform, error) {
	switch strings.ToLower(platform) {
	case "ios":
		return iOS, nil
	case "tvos":
		return tvOS, nil
	case "watchos":
		return watchOS, nil
	default:
		return "", fmt.Errorf("unknown platform: %s", platform)
	}
}
