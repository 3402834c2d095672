package fugue

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/streamhaus/fugue/codec"
	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/observability"
	"github.com/streamhaus/fugue/transport"
	"github.com/streamhaus/fugue/version"
)

// DefaultURL is the transport URL used when none is configured.
const DefaultURL = "kafka://localhost:9092"

var validate = validator.New()

// Options holds application configuration. All fields have working defaults
// except ID, which is required.
type Options struct {
	// ID is the application identity. Required.
	ID string `mapstructure:"id" validate:"required"`

	// URL is the transport connection URL; the scheme selects the driver.
	URL string `mapstructure:"url" validate:"required"`

	// ClientID identifies the application to the broker. Defaults to
	// "fugue-<version>".
	ClientID string `mapstructure:"client_id"`

	// CommitInterval is how often consumer offsets are committed.
	CommitInterval time.Duration `mapstructure:"commit_interval"`

	// KeyCodec is the default key codec name for sends that specify none.
	// Empty means keys pass through raw.
	KeyCodec string `mapstructure:"key_codec"`

	// ValueCodec is the default value codec name for event types that do
	// not carry their own.
	ValueCodec string `mapstructure:"value_codec"`

	// StandbyReplicas is the number of standby replicas for each task.
	StandbyReplicas int `mapstructure:"standby_replicas" validate:"gte=0"`

	// ReplicationFactor applies to changelog and repartition topics created
	// by the application.
	ReplicationFactor int `mapstructure:"replication_factor" validate:"gte=1"`

	// Transport holds driver-level connection settings.
	Transport transport.Config `mapstructure:"transport"`

	// Logging configures the application logger.
	Logging logger.Config `mapstructure:"logging"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields and syncs the
// shared identity fields into the transport config.
func (o *Options) ApplyDefaults() {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.ClientID == "" {
		o.ClientID = fmt.Sprintf("fugue-%s", version.Version)
	}
	if o.CommitInterval <= 0 {
		o.CommitInterval = 30 * time.Second
	}
	if o.ValueCodec == "" {
		o.ValueCodec = "json"
	}
	if o.ReplicationFactor == 0 {
		o.ReplicationFactor = 1
	}

	o.Logging.ApplyDefaults()

	if o.Transport.ClientID == "" {
		o.Transport.ClientID = o.ClientID
	}
	if o.Transport.GroupID == "" {
		o.Transport.GroupID = o.ID
	}
	if o.Transport.CommitInterval <= 0 {
		o.Transport.CommitInterval = o.CommitInterval
	}
	o.Transport.ApplyDefaults()
}

// Validate checks the options. Call after ApplyDefaults.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return &ConfigurationError{Message: "invalid options", Cause: err}
	}
	if o.KeyCodec != "" {
		if _, err := codec.Resolve(o.KeyCodec); err != nil {
			return &ConfigurationError{Message: "key codec", Cause: err}
		}
	}
	if _, err := codec.Resolve(o.ValueCodec); err != nil {
		return &ConfigurationError{Message: "value codec", Cause: err}
	}
	if err := o.Logging.Validate(); err != nil {
		return &ConfigurationError{Message: "logging", Cause: err}
	}
	if err := o.Transport.Validate(); err != nil {
		return &ConfigurationError{Message: "transport", Cause: err}
	}
	return nil
}

// Option customizes application construction.
type Option func(*App)

// WithURL sets the transport connection URL.
func WithURL(url string) Option {
	return func(a *App) { a.opts.URL = url }
}

// WithClientID sets the broker client identifier.
func WithClientID(id string) Option {
	return func(a *App) { a.opts.ClientID = id }
}

// WithCommitInterval sets the consumer offset commit interval.
func WithCommitInterval(d time.Duration) Option {
	return func(a *App) { a.opts.CommitInterval = d }
}

// WithKeyCodec sets the default key codec by name.
func WithKeyCodec(name string) Option {
	return func(a *App) { a.opts.KeyCodec = name }
}

// WithValueCodec sets the default value codec by name.
func WithValueCodec(name string) Option {
	return func(a *App) { a.opts.ValueCodec = name }
}

// WithStandbyReplicas sets the number of standby replicas per task.
func WithStandbyReplicas(n int) Option {
	return func(a *App) { a.opts.StandbyReplicas = n }
}

// WithReplicationFactor sets the replication factor for topics created by
// the application.
func WithReplicationFactor(n int) Option {
	return func(a *App) { a.opts.ReplicationFactor = n }
}

// WithOptions replaces the full options struct, e.g. one loaded from a
// config file. The ID given to New still wins.
func WithOptions(opts Options) Option {
	return func(a *App) {
		id := a.opts.ID
		a.opts = opts
		if id != "" {
			a.opts.ID = id
		}
	}
}

// WithTransportConfig sets driver-level connection settings.
func WithTransportConfig(cfg transport.Config) Option {
	return func(a *App) { a.opts.Transport = cfg }
}

// WithLogging configures the application logger.
func WithLogging(cfg logger.Config) Option {
	return func(a *App) { a.opts.Logging = cfg }
}

// WithLogger sets the application logger.
func WithLogger(log *logger.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithMetrics sets the publish-pipeline metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(a *App) { a.metrics = m }
}
