package mqtt

import (
	"fmt"
	"strings"
)

// expected: {prefix}/user/{userId}/{kind}
func ParseUserID(topic, prefix string) (string, error) {
	parts := strings.Split(topic, "/")
	prefixParts := strings.Split(prefix, "/")
	if len(parts) != len(prefixParts)+3 {
		return "", fmt.Errorf("invalid topic: %s", topic)
	}
	for i, p := range prefixParts {
		if parts[i] != p {
			return "", fmt.Errorf("topic prefix mismatch: %s", topic)
		}
	}
	if parts[len(prefixParts)] != "user" {
		return "", fmt.Errorf("invalid topic pattern: %s", topic)
	}
	userID := parts[len(prefixParts)+1]
	if userID == "" {
		return "", fmt.Errorf("empty user id in topic: %s", topic)
	}
	return userID, nil
}
