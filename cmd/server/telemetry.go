package main

import (
	"context"

	"github.com/erp/soreconcile/internal/infrastructure/config"
	"github.com/erp/soreconcile/internal/infrastructure/logger"
	"github.com/erp/soreconcile/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type telemetryProviders struct {
	profiler *telemetry.Profiler
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
}

// setupTelemetry starts the OTLP providers and the profiler and returns the
// logger to use from here on. When log export is enabled, the returned logger
// tees every entry into the OpenTelemetry log pipeline. Provider failures are
// logged and the service continues without that signal.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryProviders, *zap.Logger) {
	t := cfg.Telemetry
	p := &telemetryProviders{}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Warn("Tracing unavailable", zap.Error(err))
		tp, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{}, log)
	}
	p.tracer = tp

	prof, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           t.ProfilingEnabled,
		ServerAddress:     t.ProfilingAddress,
		ApplicationName:   t.ServiceName,
		BasicAuthUser:     t.ProfilingBasicAuthUser,
		BasicAuthPassword: t.ProfilingBasicAuthPassword,
	}, log)
	if err != nil {
		log.Warn("Profiling unavailable", zap.Error(err))
		prof, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
	}
	p.profiler = prof
	if prof.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           t.MetricsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ExportInterval:    t.MetricsExportInterval,
		ServiceName:       t.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Warn("Metrics unavailable", zap.Error(err))
		mp, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}
	p.meter = mp

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           t.LogsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Warn("Log export unavailable", zap.Error(err))
		lp, _ = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{}, log)
	}
	p.logs = lp

	return p, lp.BridgeLogger(log, t.ServiceName, logger.ParseLevel(cfg.Log.Level))
}

// shutdown flushes and stops the providers, logs last so late entries still export
func (p *telemetryProviders) shutdown(ctx context.Context, log *zap.Logger) {
	if err := p.profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := p.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := p.meter.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
