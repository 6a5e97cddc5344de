package mqtt

import "fmt"

func TopicUserInbound(prefix string) string {
	return fmt.Sprintf("%s/user/+/inbound", prefix)
}

func TopicInbound(prefix, userID string) string {
	return fmt.Sprintf("%s/user/%s/inbound", prefix, userID)
}

func TopicReply(prefix, userID string) string {
	return fmt.Sprintf("%s/user/%s/reply", prefix, userID)
}

func TopicStatus(prefix string) string {
	return fmt.Sprintf("%s/status", prefix)
}
