package pubsite

import (
	"fmt"
	"strings"
)

// Target is the deployment target a build is produced for. It selects the
// site URL, analytics id, robots policy and advertisement visibility.
type Target int

const (
	Development Target = iota
	Staging
	Production
)

// Targets lists every deployment target in declaration order.
var Targets = []Target{Development, Staging, Production}

// ParseTarget parses a target name. The empty string means Development.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "development", "dev":
		return Development, nil
	case "staging":
		return Staging, nil
	case "production", "prod":
		return Production, nil
	default:
		return Development, fmt.Errorf("unknown deployment target %q (want production, staging or development)", s)
	}
}

func (t Target) String() string {
	switch t {
	case Development:
		return "development"
	case Staging:
		return "staging"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ShowsAds reports whether article pages carry the advertisement slot.
func (t Target) ShowsAds() bool {
	switch t {
	case Production, Staging:
		return true
	case Development:
		return false
	default:
		return false
	}
}

// DefaultURL is the canonical site URL used when the config has none.
func (t Target) DefaultURL() string {
	switch t {
	case Production:
		return "https://example.com"
	case Staging:
		return "https://staging.example.com"
	case Development:
		return "http://localhost:8000"
	default:
		return "http://localhost:8000"
	}
}

// DefaultRobots is the robots policy used when the config has none.
// Only production lets crawlers in, and even then listing pages stay out.
func (t Target) DefaultRobots() []RobotsRule {
	switch t {
	case Production:
		return []RobotsRule{{UserAgent: "*", Disallow: []string{"/pages", "/category", "/author"}}}
	case Staging, Development:
		return []RobotsRule{{UserAgent: "*", Disallow: []string{"/"}}}
	default:
		return []RobotsRule{{UserAgent: "*", Disallow: []string{"/"}}}
	}
}
