package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"post-manager/config"
	"post-manager/internal/logger"
)

// ShutdownFunc 는 트레이서 프로바이더를 종료한다.
type ShutdownFunc func(context.Context) error

// Init 은 OTLP/HTTP 트레이스 익스포터를 설정한다.
// 비활성화 상태면 아무 것도 하지 않는 종료 함수를 반환한다. (otelhttp 계측은 no-op 으로 동작)
func Init(ctx context.Context, cfg config.TelemetryConfig, component string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName+"-"+component),
		attribute.String("post_manager.component", component),
	)

	ratio := cfg.SampleRatio
	if ratio < 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	)

	logger.InfoWithFields("tracing enabled", logger.Fields{
		"endpoint":     cfg.OTLPEndpoint,
		"sample_ratio": ratio,
	})
	return tp.Shutdown, nil
}
