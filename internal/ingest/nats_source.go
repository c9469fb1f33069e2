package ingest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var errNATSSourceStarted = errors.New("ingest.nats.already_started")

// NATSSource feeds events published on NATS subjects into a Listener.
type NATSSource struct {
	conn          *nats.Conn
	listener      *Listener
	logger        *zap.Logger
	userSubject   string
	adminSubject  string
	mutex         sync.Mutex
	subscriptions []*nats.Subscription
}

// ConnectNATS dials the NATS server at url.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("keycloak-event-metrics"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("ingest.nats.connect: %w", err)
	}
	return conn, nil
}

// NewNATSSource constructs a source. An empty subject disables that event shape.
func NewNATSSource(conn *nats.Conn, listener *Listener, logger *zap.Logger, userSubject string, adminSubject string) *NATSSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSSource{
		conn:         conn,
		listener:     listener,
		logger:       logger.Named("NATSSource"),
		userSubject:  strings.TrimSpace(userSubject),
		adminSubject: strings.TrimSpace(adminSubject),
	}
}

// Start subscribes to the configured subjects.
func (source *NATSSource) Start() error {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	if len(source.subscriptions) > 0 {
		return errNATSSourceStarted
	}

	if source.userSubject != "" {
		subscription, err := source.conn.Subscribe(source.userSubject, source.handleUserMessage)
		if err != nil {
			return fmt.Errorf("ingest.nats.subscribe.%s: %w", source.userSubject, err)
		}
		source.subscriptions = append(source.subscriptions, subscription)
	}
	if source.adminSubject != "" {
		subscription, err := source.conn.Subscribe(source.adminSubject, source.handleAdminMessage)
		if err != nil {
			source.unsubscribeLocked()
			return fmt.Errorf("ingest.nats.subscribe.%s: %w", source.adminSubject, err)
		}
		source.subscriptions = append(source.subscriptions, subscription)
	}
	source.logger.Info("subscribed to event subjects",
		zap.String("user_subject", source.userSubject),
		zap.String("admin_subject", source.adminSubject))
	return nil
}

// Stop removes every subscription.
func (source *NATSSource) Stop() {
	source.mutex.Lock()
	defer source.mutex.Unlock()
	source.unsubscribeLocked()
}

func (source *NATSSource) unsubscribeLocked() {
	for _, subscription := range source.subscriptions {
		if err := subscription.Unsubscribe(); err != nil {
			source.logger.Warn("unsubscribe failed",
				zap.String("subject", subscription.Subject),
				zap.Error(err))
		}
	}
	source.subscriptions = nil
}

func (source *NATSSource) handleUserMessage(message *nats.Msg) {
	event, err := DecodeUserEvent(message.Data)
	if err != nil {
		source.logger.Warn("dropping undecodable user event",
			zap.String("code", "ingest.nats.invalid_user_event"),
			zap.String("subject", message.Subject),
			zap.Error(err))
		return
	}
	source.listener.OnEvent(event)
}

func (source *NATSSource) handleAdminMessage(message *nats.Msg) {
	event, err := DecodeAdminEvent(message.Data)
	if err != nil {
		source.logger.Warn("dropping undecodable admin event",
			zap.String("code", "ingest.nats.invalid_admin_event"),
			zap.String("subject", message.Subject),
			zap.Error(err))
		return
	}
	source.listener.OnAdminEvent(event)
}
