package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"replymate/internal/domain"
)

type HubConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Replier interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// Hub relays {prefix}/user/{id}/inbound messages through the reply pipeline
// and publishes the outcome to {prefix}/user/{id}/reply.
type Hub struct {
	cfg     HubConfig
	client  paho.Client
	replier Replier
	logger  *slog.Logger
	ctx     context.Context
}

func NewHub(cfg HubConfig, replier Replier, logger *slog.Logger) *Hub {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "replymate"
	}
	return &Hub{
		cfg:     cfg,
		replier: replier,
		logger:  logger,
		ctx:     context.Background(),
	}
}

func (h *Hub) Start(ctx context.Context) error {
	h.ctx = ctx
	opts := paho.NewClientOptions().
		AddBroker(h.cfg.BrokerURL).
		SetClientID(h.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetWill(TopicStatus(h.cfg.TopicPrefix), "offline", 1, true)

	if h.cfg.Username != "" {
		opts.SetUsername(h.cfg.Username)
		opts.SetPassword(h.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		h.logger.Error("mqtt connection lost", "error", err)
	})
	// Subscriptions are not persisted by the broker for clean sessions, so
	// they are renewed on every (re)connect.
	opts.SetOnConnectHandler(func(c paho.Client) {
		if token := c.Subscribe(TopicUserInbound(h.cfg.TopicPrefix), 1, h.handleInbound); token.Wait() && token.Error() != nil {
			h.logger.Error("mqtt subscribe failed", "error", token.Error())
			return
		}
		c.Publish(TopicStatus(h.cfg.TopicPrefix), 1, true, "online")
		h.logger.Info("mqtt relay subscribed", "topic", TopicUserInbound(h.cfg.TopicPrefix))
	})

	h.client = paho.NewClient(opts)
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		if token := h.client.Publish(TopicStatus(h.cfg.TopicPrefix), 1, true, "offline"); token.WaitTimeout(time.Second) && token.Error() != nil {
			h.logger.Warn("mqtt publish offline status failed", "error", token.Error())
		}
		h.client.Disconnect(100)
	}()

	return nil
}

func (h *Hub) handleInbound(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	payload := append([]byte{}, msg.Payload()...)
	// Generation can take seconds; keep the paho router free.
	go func() {
		replyTopic, event, err := h.processInbound(h.ctx, topic, payload)
		if err != nil {
			h.logger.Warn("skip inbound mqtt message", "topic", topic, "error", err)
			return
		}
		raw, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("encode reply event failed", "error", err)
			return
		}
		if token := h.client.Publish(replyTopic, 1, false, raw); token.Wait() && token.Error() != nil {
			h.logger.Error("publish reply failed", "topic", replyTopic, "error", token.Error())
		}
	}()
}

// processInbound turns one inbound payload into the reply event to publish.
// An error means the message is dropped without a reply.
func (h *Hub) processInbound(ctx context.Context, topic string, payload []byte) (string, domain.ReplyEvent, error) {
	userID, err := ParseUserID(topic, h.cfg.TopicPrefix)
	if err != nil {
		return "", domain.ReplyEvent{}, err
	}
	text := parseInboundText(payload)
	if text == "" {
		return "", domain.ReplyEvent{}, fmt.Errorf("empty inbound text for user %s", userID)
	}

	event := domain.ReplyEvent{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Text:      text,
	}
	start := time.Now()
	reply, err := h.replier.Reply(ctx, userID, text)
	if err != nil {
		h.logger.Error("mqtt reply failed", "user_id", userID, "request_id", event.RequestID, "error", err)
		event.Error = err.Error()
	} else {
		event.Reply = reply
		h.logger.Info("mqtt reply served", "user_id", userID, "request_id", event.RequestID, "total_ms", time.Since(start).Milliseconds())
	}
	return TopicReply(h.cfg.TopicPrefix, userID), event, nil
}

// parseInboundText accepts {"text": "..."} or a plain UTF-8 body.
func parseInboundText(payload []byte) string {
	var in domain.InboundMessage
	if err := json.Unmarshal(payload, &in); err == nil {
		return strings.TrimSpace(in.Text)
	}
	return strings.TrimSpace(string(payload))
}
