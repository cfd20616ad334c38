// Package events publishes booking lifecycle events over MQTT so
// downstream services (notifications, QR generation, dashboards) can
// react without being in the booking path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"

	"turnero/internal/domain"
)

type Config struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Publisher struct {
	cfg    Config
	client paho.Client
	logger *slog.Logger
}

func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "turnero"
	}
	return &Publisher{cfg: cfg, logger: logger}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.cfg.BrokerURL != ""
}

func (p *Publisher) Start(ctx context.Context) error {
	if !p.Enabled() {
		return fmt.Errorf("mqtt broker is not configured")
	}
	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.logger.Error("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		p.client.Disconnect(100)
	}()
	return nil
}

func (p *Publisher) topicBooked() string {
	return p.cfg.TopicPrefix + "/turnos/confirmado"
}

// PublishBooked announces a confirmed booking. Failures are logged,
// never surfaced to the conversation.
func (p *Publisher) PublishBooked(t *domain.ConfirmationTicket) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(t)
	if err != nil {
		p.logger.Error("marshal booking event", "error", err)
		return
	}
	token := p.client.Publish(p.topicBooked(), 1, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			p.logger.Error("publish booking event", "code", t.Code, "error", token.Error())
		}
	}()
}
