package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sqlAttributeLimit = 256

type queryTracerKey struct{}

// QueryTracer implements pgx.QueryTracer, opening one client span per
// statement named after its leading SQL keyword.
type QueryTracer struct{}

func (QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := sqlOperation(data.SQL)
	ctx, span := otel.Tracer("overstock.db").Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", clipSQL(data.SQL)),
		),
	)
	return context.WithValue(ctx, queryTracerKey{}, span)
}

func (QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(queryTracerKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	}
	span.End()
}

func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

// clipSQL collapses whitespace and bounds the statement attribute so multiline
// queries do not bloat span payloads.
func clipSQL(sql string) string {
	flat := strings.Join(strings.Fields(sql), " ")
	if len(flat) > sqlAttributeLimit {
		return flat[:sqlAttributeLimit]
	}
	return flat
}
