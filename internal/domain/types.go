package domain

import (
	"encoding/json"
	"fmt"
)

// Exchange is one (incoming message, generated reply) pair. It is stored as a
// two-element JSON array so data files stay readable by older tooling.
type Exchange struct {
	Incoming string
	Reply    string
}

func (e Exchange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Incoming, e.Reply})
}

func (e *Exchange) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry must have 2 elements, got %d", len(pair))
	}
	e.Incoming = pair[0]
	e.Reply = pair[1]
	return nil
}

type UserProfile struct {
	Style           string            `json:"style"`
	PartnerName     string            `json:"girlfriend_name"`
	PersonalDetails map[string]string `json:"personal_details"`
	History         []Exchange        `json:"history"`
}

func DefaultProfile() UserProfile {
	return UserProfile{
		Style:           DefaultStyle,
		PersonalDetails: map[string]string{},
		History:         []Exchange{},
	}
}

// Clone returns a deep copy so callers never share maps or slices with a store.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.PersonalDetails = make(map[string]string, len(p.PersonalDetails))
	for k, v := range p.PersonalDetails {
		out.PersonalDetails[k] = v
	}
	out.History = append([]Exchange{}, p.History...)
	return out
}

// Normalize fills nil collections left by older or hand-edited records.
func (p *UserProfile) Normalize() {
	if p.Style == "" {
		p.Style = DefaultStyle
	}
	if p.PersonalDetails == nil {
		p.PersonalDetails = map[string]string{}
	}
	if p.History == nil {
		p.History = []Exchange{}
	}
}

// TrimHistory keeps the most recent limit exchanges. limit <= 0 keeps everything.
func (p *UserProfile) TrimHistory(limit int) {
	if limit > 0 && len(p.History) > limit {
		p.History = append([]Exchange{}, p.History[len(p.History)-limit:]...)
	}
}

type ReplyRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type ReplyResponse struct {
	UserID string `json:"user_id"`
	Reply  string `json:"reply"`
}

// MQTT payloads

type InboundMessage struct {
	Text string `json:"text"`
}

type ReplyEvent struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Reply     string `json:"reply"`
	Error     string `json:"error,omitempty"`
}
