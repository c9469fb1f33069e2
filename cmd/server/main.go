package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/eventmetrics/internal/eventmetrics"
	"github.com/tyemirov/eventmetrics/internal/ingest"
	"github.com/tyemirov/eventmetrics/internal/web"
	"github.com/tyemirov/eventmetrics/pkg/ingesttoken"
	"go.uber.org/zap"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

var connectNATS = func(url string) (*nats.Conn, error) {
	return ingest.ConnectNATS(url)
}

var dialAMQP = func(url string) (*amqp.Connection, error) {
	return ingest.DialAMQP(url)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "keycloak-event-metrics",
		Short:   "Counts Keycloak user and admin events and exposes them for Prometheus scrapes",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.PersistentFlags().String("ingest_signing_key", "", "HS256 secret for bearer tokens presented by event pushers")
	rootCmd.PersistentFlags().String("ingest_issuer", defaultIngestIssuer, "Issuer expected in ingest bearer tokens")
	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("metrics_path", "/metrics", "Path serving the exposition document")
	rootCmd.Flags().String("nats_url", "", "NATS server URL; empty disables the NATS source")
	rootCmd.Flags().String("nats_user_subject", "keycloak.events.user", "NATS subject carrying user events")
	rootCmd.Flags().String("nats_admin_subject", "keycloak.events.admin", "NATS subject carrying admin events")
	rootCmd.Flags().String("amqp_url", "", "AMQP broker URL; empty disables the AMQP consumer")
	rootCmd.Flags().String("amqp_queue", "keycloak-events", "Durable AMQP queue carrying user and admin events")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for browser-based scrapers and pushers")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")

	_ = viper.BindPFlag("ingest_signing_key", rootCmd.PersistentFlags().Lookup("ingest_signing_key"))
	_ = viper.BindPFlag("ingest_issuer", rootCmd.PersistentFlags().Lookup("ingest_issuer"))
	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("metrics_path", rootCmd.Flags().Lookup("metrics_path"))
	_ = viper.BindPFlag("nats_url", rootCmd.Flags().Lookup("nats_url"))
	_ = viper.BindPFlag("nats_user_subject", rootCmd.Flags().Lookup("nats_user_subject"))
	_ = viper.BindPFlag("nats_admin_subject", rootCmd.Flags().Lookup("nats_admin_subject"))
	_ = viper.BindPFlag("amqp_url", rootCmd.Flags().Lookup("amqp_url"))
	_ = viper.BindPFlag("amqp_queue", rootCmd.Flags().Lookup("amqp_queue"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newMintTokenCommand())

	return rootCmd
}

const (
	defaultIngestIssuer = "keycloak-event-metrics"

	configCodeMissingIngestSigningKey = "config.missing_ingest_signing_key"
	configCodeMissingIngestIssuer     = "config.missing_ingest_issuer"
	configCodeInvalidMetricsPath      = "config.invalid_metrics_path"
	configCodeMissingNATSSubjects     = "config.missing_nats_subjects"
	configCodeMissingAMQPQueue        = "config.missing_amqp_queue"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
	configCodeIngestValidatorInit     = "config.ingest_validator_init"
	configCodeNATSConnect             = "config.nats_connect"
	configCodeAMQPConnect             = "config.amqp_connect"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	serverConfig, loadErr := LoadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, serverConfig))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func LoadServerConfig() (ingest.ServerConfig, error) {
	ingestSigningKey := viper.GetString("ingest_signing_key")
	if ingestSigningKey == "" {
		return ingest.ServerConfig{}, configError(configCodeMissingIngestSigningKey, "ingest_signing_key must be provided")
	}

	ingestIssuer := strings.TrimSpace(viper.GetString("ingest_issuer"))
	if ingestIssuer == "" {
		return ingest.ServerConfig{}, configError(configCodeMissingIngestIssuer, "ingest_issuer must be provided")
	}

	metricsPath := viper.GetString("metrics_path")
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if !strings.HasPrefix(metricsPath, "/") {
		return ingest.ServerConfig{}, configError(configCodeInvalidMetricsPath, "metrics_path must start with /")
	}

	serverConfig := ingest.ServerConfig{
		ListenAddr:         viper.GetString("listen_addr"),
		MetricsPath:        metricsPath,
		IngestSigningKey:   []byte(ingestSigningKey),
		IngestIssuer:       ingestIssuer,
		NATSURL:            strings.TrimSpace(viper.GetString("nats_url")),
		NATSUserSubject:    strings.TrimSpace(viper.GetString("nats_user_subject")),
		NATSAdminSubject:   strings.TrimSpace(viper.GetString("nats_admin_subject")),
		AMQPURL:            strings.TrimSpace(viper.GetString("amqp_url")),
		AMQPQueue:          strings.TrimSpace(viper.GetString("amqp_queue")),
		EnableCORS:         viper.GetBool("enable_cors"),
		CORSAllowedOrigins: viper.GetStringSlice("cors_allowed_origins"),
	}

	if serverConfig.NATSEnabled() && serverConfig.NATSUserSubject == "" && serverConfig.NATSAdminSubject == "" {
		return ingest.ServerConfig{}, configError(configCodeMissingNATSSubjects, "nats_user_subject or nats_admin_subject must be provided when nats_url is set")
	}
	if serverConfig.AMQPEnabled() && serverConfig.AMQPQueue == "" {
		return ingest.ServerConfig{}, configError(configCodeMissingAMQPQueue, "amqp_queue must be provided when amqp_url is set")
	}

	return serverConfig, nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	serverConfig, ok := contextValue.(ingest.ServerConfig)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if serverConfig.EnableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, serverConfig.CORSAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	tokenValidator, validatorErr := ingesttoken.New(ingesttoken.Config{
		SigningKey: serverConfig.IngestSigningKey,
		Issuer:     serverConfig.IngestIssuer,
	})
	if validatorErr != nil {
		return fmt.Errorf("%s: %w", configCodeIngestValidatorInit, validatorErr)
	}

	recorder := eventmetrics.NewRecorder(eventmetrics.Default(), logger)
	listener := ingest.NewListener(recorder, logger)

	router.GET(serverConfig.MetricsPath, web.HandleMetrics(recorder, logger))
	ingestRoutes := router.Group("/", tokenValidator.GinMiddleware(ingesttoken.DefaultContextKey))
	ingest.MountEventRoutes(ingestRoutes, listener, logger)

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	if serverConfig.NATSEnabled() {
		natsConn, connectErr := connectNATS(serverConfig.NATSURL)
		if connectErr != nil {
			return fmt.Errorf("%s: %w", configCodeNATSConnect, connectErr)
		}
		defer natsConn.Close()
		natsSource := ingest.NewNATSSource(natsConn, listener, logger, serverConfig.NATSUserSubject, serverConfig.NATSAdminSubject)
		if startErr := natsSource.Start(); startErr != nil {
			return startErr
		}
		defer natsSource.Stop()
	}

	if serverConfig.AMQPEnabled() {
		amqpConn, dialErr := dialAMQP(serverConfig.AMQPURL)
		if dialErr != nil {
			return fmt.Errorf("%s: %w", configCodeAMQPConnect, dialErr)
		}
		defer func() { _ = amqpConn.Close() }()
		amqpConsumer := ingest.NewAMQPConsumer(amqpConn, listener, logger, serverConfig.AMQPQueue)
		if startErr := amqpConsumer.Start(shutdownCtx); startErr != nil {
			return startErr
		}
		defer amqpConsumer.Stop()
	}

	server := &http.Server{
		Addr:              serverConfig.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stopSignals)
		select {
		case <-stopSignals:
		case <-shutdownCtx.Done():
			return
		}
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening",
		zap.String("addr", serverConfig.ListenAddr),
		zap.String("metrics_path", serverConfig.MetricsPath),
		zap.Bool("nats", serverConfig.NATSEnabled()),
		zap.Bool("amqp", serverConfig.AMQPEnabled()))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
