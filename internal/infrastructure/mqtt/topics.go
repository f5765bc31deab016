package mqtt

import "fmt"

// TopicPrefix is the base for all daemon topics.
// Scheme: pisense/{site}/{channel}
const TopicPrefix = "pisense"

// Topics provides builders for the daemon's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// Status returns the retained presence topic for a site.
//
// Example: pisense/attic-pi/status
func (Topics) Status(site string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, site)
}

// Heartbeat returns the liveness beat topic for a site.
//
// Example: pisense/attic-pi/heartbeat
func (Topics) Heartbeat(site string) string {
	return fmt.Sprintf("%s/%s/heartbeat", TopicPrefix, site)
}

// AllStatuses returns a pattern matching every site's presence topic.
//
// Pattern: pisense/+/status
func (Topics) AllStatuses() string {
	return fmt.Sprintf("%s/+/status", TopicPrefix)
}
