package sched

import (
	"github.com/viant/afs/storage"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/meta"
	"github.com/viant/sched/service/registry"
	"github.com/viant/sched/service/scheduler"
	"github.com/viant/sched/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the runtime service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithRegistry sets the process registry.
func WithRegistry(service *registry.Service) Option {
	return func(s *Service) { s.registry = service }
}

// WithExecutor sets the executor invoked for every scheduled slice. An
// executor is required; there is no default.
func WithExecutor(executor scheduler.Executor) Option {
	return func(s *Service) { s.executor = executor }
}

// WithEventService sets the lifecycle event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.events = service }
}

// WithExitHook registers a hook observing each process after its final
// slice, before registry removal.
func WithExitHook(hook scheduler.ExitHook) Option {
	return func(s *Service) { s.exitHooks = append(s.exitHooks, hook) }
}

// WithMetaService sets the meta service used for config loading.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) { s.metaService = service }
}

// WithMetaBaseURL sets the meta base URL.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) { s.metaBaseURL = url }
}

// WithMetaFsOptions sets meta file system options.
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.metaFsOptions = options }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
