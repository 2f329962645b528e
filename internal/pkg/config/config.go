package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type (
	Tasks struct {
		AssignmentExpiryInterval time.Duration
		HeartbeatCheckInterval   time.Duration
		FleetSyncInterval        time.Duration
	}

	HTTPServer struct {
		Port             string
		RequestTimeout   time.Duration // middleware timeout
		RateLimiterQPS   int           // middleware rate limiter capacity
		RateLimiterBurst int           // middleware rate limiter burst/refill
		PprofEnabled     bool
		PprofPort        string
	}

	Storage struct {
		Driver string
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}

	Dispatch struct {
		AcceptTimeout       time.Duration
		AtomicAcceptTimeout time.Duration
		HeartbeatTimeout    time.Duration
		PINFailureThreshold int
		SLAStandard         time.Duration
		SLAAtomic           time.Duration
		SubscriptionBuffer  int
		// PingsPerMinute - лимит пингов одного курьера; 0 отключает лимит.
		PingsPerMinute int
		// MaxPingSkew - насколько время устройства может опережать время сервера.
		MaxPingSkew time.Duration
	}

	Gateway struct {
		RetryInitialInterval time.Duration
		RetryMaxElapsed      time.Duration
	}

	FleetService struct {
		GRPCHost string
	}

	Kafka struct {
		Enabled            bool
		PortHealthcheck    string
		Brokers            string
		Topic              string
		ConsumerGroup      string
		NotificationsTopic string
		AuditTopic         string
		Sarama             Sarama
		Handlers           KafkaHandlers
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	KafkaHandlers struct {
		OrderStatusChanged OrderStatusChanged
	}

	OrderStatusChanged struct {
		ProcessTimeout time.Duration
	}

	Config struct {
		Tasks        Tasks
		Server       HTTPServer
		Storage      Storage
		Database     Database
		Dispatch     Dispatch
		Gateway      Gateway
		FleetService FleetService
		Kafka        Kafka
	}
)

func (k Kafka) BrokerList() []string {
	brokers := strings.Split(k.Brokers, ",")
	out := brokers[:0]
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

// LoadWorker - конфиг воркера событий заказов: HTTP-сервер и задачи ему не нужны.
func LoadWorker() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if cfg.Storage.Driver != StorageDriverPostgres {
		return nil, errors.New("validation: worker requires STORAGE_DRIVER=postgres, memory state is not shared between processes")
	}
	if err := validateStorage(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	if err := validateKafka(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	var errs []error
	durations := func(name string, def time.Duration) time.Duration {
		d, err := osGetEnvDuration(name, def)
		errs = append(errs, err)
		return d
	}
	ints := func(name string, def int) int {
		v, err := osGetInt(name, def)
		errs = append(errs, err)
		return v
	}
	bools := func(name string) bool {
		v, err := osGetBool(name)
		errs = append(errs, err)
		return v
	}

	cfg := &Config{
		Tasks: Tasks{
			AssignmentExpiryInterval: durations("BACKGROUND_ASSIGNMENT_EXPIRY_INTERVAL", 15*time.Second),
			HeartbeatCheckInterval:   durations("BACKGROUND_HEARTBEAT_CHECK_INTERVAL", 30*time.Second),
			FleetSyncInterval:        durations("BACKGROUND_FLEET_SYNC_INTERVAL", 5*time.Minute),
		},
		Server: HTTPServer{
			Port:             os.Getenv("PORT"),
			RequestTimeout:   durations("MIDDLEWARE_REQUEST_TIMEOUT", 0),
			RateLimiterQPS:   ints("MIDDLEWARE_RATE_LIMIT_QPS", 0),
			RateLimiterBurst: ints("MIDDLEWARE_RATE_LIMIT_BURST", 0),
			PprofEnabled:     bools("PPROF_ENABLED"),
			PprofPort:        os.Getenv("PPROF_PORT"),
		},
		Storage: Storage{
			Driver: osGetString("STORAGE_DRIVER", StorageDriverPostgres),
		},
		Database: Database{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
		},
		Dispatch: Dispatch{
			AcceptTimeout:       durations("DISPATCH_ACCEPT_TIMEOUT", 90*time.Second),
			AtomicAcceptTimeout: durations("DISPATCH_ATOMIC_ACCEPT_TIMEOUT", 45*time.Second),
			HeartbeatTimeout:    durations("DISPATCH_HEARTBEAT_TIMEOUT", 2*time.Minute),
			PINFailureThreshold: ints("DISPATCH_PIN_FAILURE_THRESHOLD", 3),
			SLAStandard:         durations("DISPATCH_SLA_STANDARD", 60*time.Minute),
			SLAAtomic:           durations("DISPATCH_SLA_ATOMIC", 30*time.Minute),
			SubscriptionBuffer:  ints("DISPATCH_SUBSCRIPTION_BUFFER", 16),
			PingsPerMinute:      ints("DISPATCH_PINGS_PER_MINUTE", 60),
			MaxPingSkew:         durations("DISPATCH_MAX_PING_SKEW", time.Minute),
		},
		Gateway: Gateway{
			RetryInitialInterval: durations("DISPATCH_RETRY_INITIAL_INTERVAL", 50*time.Millisecond),
			RetryMaxElapsed:      durations("DISPATCH_RETRY_MAX_ELAPSED", 2*time.Second),
		},
		FleetService: FleetService{
			GRPCHost: os.Getenv("FLEET_SERVICE_GRPC_HOST"),
		},
		Kafka: Kafka{
			Enabled:            bools("KAFKA_ENABLED"),
			Brokers:            os.Getenv("KAFKA_BROKERS"),
			Topic:              os.Getenv("KAFKA_TOPIC"),
			ConsumerGroup:      os.Getenv("KAFKA_CONSUMER_GROUP"),
			NotificationsTopic: osGetString("KAFKA_NOTIFICATIONS_TOPIC", "dispatch.notifications"),
			AuditTopic:         osGetString("KAFKA_AUDIT_TOPIC", "dispatch.audit"),
			PortHealthcheck:    os.Getenv("KAFKA_HTTP_HEALTHCHECK_PORT"),
			Sarama: Sarama{
				Version:                   os.Getenv("KAFKA_SARAMA_VERSION"),
				ConsumerOffsetsAutocommit: bools("KAFKA_SARAMA_OFFSETS_AUTOCOMMIT"),
			},
			Handlers: KafkaHandlers{
				OrderStatusChanged: OrderStatusChanged{
					ProcessTimeout: durations("KAFKA_HANDLER_ORDER_STATUS_CHANGED_PROCESS_TIMEOUT", 5*time.Second),
				},
			},
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required (set via PORT env variable or --port flag)")
	}
	if cfg.Server.RequestTimeout == time.Duration(0) {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT is required")
	}
	if cfg.Server.RateLimiterQPS == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_QPS is required")
	}
	if cfg.Server.RateLimiterBurst == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST is required")
	}
	if cfg.Server.PprofPort == "" && cfg.Server.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}

	if err := validateStorage(cfg); err != nil {
		return err
	}

	if cfg.Dispatch.AcceptTimeout <= 0 {
		return errors.New("DISPATCH_ACCEPT_TIMEOUT must be positive")
	}
	if cfg.Dispatch.AtomicAcceptTimeout <= 0 || cfg.Dispatch.AtomicAcceptTimeout > cfg.Dispatch.AcceptTimeout {
		return errors.New("DISPATCH_ATOMIC_ACCEPT_TIMEOUT must be positive and not exceed DISPATCH_ACCEPT_TIMEOUT")
	}
	if cfg.Dispatch.HeartbeatTimeout <= 0 {
		return errors.New("DISPATCH_HEARTBEAT_TIMEOUT must be positive")
	}
	if cfg.Dispatch.MaxPingSkew <= 0 {
		return errors.New("DISPATCH_MAX_PING_SKEW must be positive")
	}
	if cfg.Dispatch.PINFailureThreshold <= 0 {
		return errors.New("DISPATCH_PIN_FAILURE_THRESHOLD must be positive")
	}
	if cfg.Dispatch.SLAAtomic <= 0 || cfg.Dispatch.SLAStandard <= 0 {
		return errors.New("DISPATCH_SLA_STANDARD and DISPATCH_SLA_ATOMIC must be positive")
	}
	if cfg.Dispatch.SubscriptionBuffer <= 0 {
		return errors.New("DISPATCH_SUBSCRIPTION_BUFFER must be positive")
	}

	if cfg.Tasks.AssignmentExpiryInterval <= 0 {
		return errors.New("BACKGROUND_ASSIGNMENT_EXPIRY_INTERVAL must be positive")
	}
	if cfg.Tasks.HeartbeatCheckInterval <= 0 {
		return errors.New("BACKGROUND_HEARTBEAT_CHECK_INTERVAL must be positive")
	}
	if cfg.Tasks.FleetSyncInterval <= 0 {
		return errors.New("BACKGROUND_FLEET_SYNC_INTERVAL must be positive")
	}

	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.BrokerList()) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED")
		}
		if cfg.Kafka.Sarama.Version == "" {
			return errors.New("KAFKA_SARAMA_VERSION is required when KAFKA_ENABLED")
		}
	}

	return nil
}

func validateStorage(cfg *Config) error {
	switch cfg.Storage.Driver {
	case StorageDriverMemory:
		return nil
	case StorageDriverPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if cfg.Database.Host == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if cfg.Database.Port == "" {
		return errors.New("POSTGRES_PORT is required")
	}
	if cfg.Database.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("POSTGRES_PASSWORD is required")
	}
	if cfg.Database.DBName == "" {
		return errors.New("POSTGRES_DB is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("POSTGRES_SSLMODE is required")
	}
	return nil
}

func validateKafka(cfg *Config) error {
	if len(cfg.Kafka.BrokerList()) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Kafka.Topic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	if cfg.Kafka.ConsumerGroup == "" {
		return errors.New("KAFKA_CONSUMER_GROUP is required")
	}
	if cfg.Kafka.PortHealthcheck == "" {
		return errors.New("KAFKA_HTTP_HEALTHCHECK_PORT is required")
	}
	if cfg.Kafka.Sarama.Version == "" {
		return errors.New("KAFKA_SARAMA_VERSION is required")
	}
	if cfg.Kafka.Handlers.OrderStatusChanged.ProcessTimeout == time.Duration(0) {
		return errors.New("KAFKA_HANDLER_ORDER_STATUS_CHANGED_PROCESS_TIMEOUT is required")
	}
	return nil
}

func osGetString(s, def string) string {
	if val := os.Getenv(s); val != "" {
		return val
	}
	return def
}

func osGetInt(s string, def int) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return def, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return def, nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return false, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}
