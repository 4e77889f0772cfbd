package observability

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// InitTracing 未启用时返回空操作的 shutdown
func InitTracing(ctx context.Context, cfg config.Config, serviceName string, log *zap.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.OtelEnabled {
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("service.component", serviceName),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", zap.Error(err))
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.OtelSampleRatio))),
		sdktrace.WithResource(res),
	}
	if exp, err := buildExporter(ctx, cfg); err != nil {
		log.Warn("otel exporter init failed (continuing)", zap.Error(err))
	} else {
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("otel tracing initialized",
		zap.String("service", serviceName),
		zap.String("endpoint", cfg.OtelEndpoint))
	return tp.Shutdown
}

// buildExporter 未配置 endpoint 时沿用 otlptracehttp 的默认地址（localhost:4318）
func buildExporter(ctx context.Context, cfg config.Config) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if ep := strings.TrimSpace(cfg.OtelEndpoint); ep != "" {
		ep = strings.TrimPrefix(strings.TrimPrefix(ep, "http://"), "https://")
		opts = append(opts, otlptracehttp.WithEndpoint(ep))
	}
	if cfg.OtelInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}
