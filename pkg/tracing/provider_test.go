package tracing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

func restoreProvider(t *testing.T) {
	t.Helper()
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestSetup_DeshabilitadoNoTocaElProveedor(t *testing.T) {
	restoreProvider(t)
	before := otel.GetTracerProvider()

	shutdown, err := tracing.Setup(context.Background(), tracing.Config{})
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_HabilitadoSinEndpoint(t *testing.T) {
	_, err := tracing.Setup(context.Background(), tracing.Config{Enabled: true})
	assert.ErrorIs(t, err, tracing.ErrMissingEndpoint)
}

// La conexión gRPC es perezosa: no hace falta colector para instalar el proveedor.
func TestSetup_HabilitadoInstalaProveedorSDK(t *testing.T) {
	restoreProvider(t)

	shutdown, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "logistica-api",
		Env:         "test",
	})
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	_, span := tracing.Start(context.Background(), "prueba")
	assert.True(t, span.SpanContext().IsValid())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
