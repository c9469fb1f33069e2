package ingest

// ServerConfig configures the metrics endpoint and every event source.
type ServerConfig struct {
	ListenAddr         string
	MetricsPath        string
	IngestSigningKey   []byte
	IngestIssuer       string
	NATSURL            string
	NATSUserSubject    string
	NATSAdminSubject   string
	AMQPURL            string
	AMQPQueue          string
	EnableCORS         bool
	CORSAllowedOrigins []string
}

// NATSEnabled reports whether a NATS source should be started.
func (config ServerConfig) NATSEnabled() bool {
	return config.NATSURL != ""
}

// AMQPEnabled reports whether an AMQP consumer should be started.
func (config ServerConfig) AMQPEnabled() bool {
	return config.AMQPURL != ""
}
