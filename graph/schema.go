package graph

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/service"
)

const instrumentationName = "github.com/tnqbao/gau-inventory-service/graph"

func NewSchema(svc *service.Service) (graphql.Schema, error) {
	b := newBuilder(svc)
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.query(),
		Mutation: b.mutation(),
	})
}

// Request is the body of a GraphQL POST.
type Request struct {
	Query         string                 `json:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Executor runs requests against the schema and records a span and metrics per operation.
type Executor struct {
	schema   graphql.Schema
	logger   *infra.LoggerClient
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewExecutor(svc *service.Service, logger *infra.LoggerClient) (*Executor, error) {
	schema, err := NewSchema(svc)
	if err != nil {
		return nil, err
	}
	meter := otel.Meter(instrumentationName)
	requests, err := meter.Int64Counter("inventory.graphql.requests",
		metric.WithDescription("GraphQL operations executed"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("inventory.graphql.duration",
		metric.WithDescription("GraphQL operation latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Executor{
		schema:   schema,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	operation := req.OperationName
	if operation == "" {
		operation = "anonymous"
	}
	ctx, span := e.tracer.Start(ctx, "graphql "+operation, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	start := time.Now()
	result := graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	outcome := "ok"
	if result.HasErrors() {
		outcome = "error"
		span.SetStatus(codes.Error, result.Errors[0].Message)
		for _, gqlErr := range result.Errors {
			e.logger.WarningWithContextf(ctx, "[GraphQL] %s: %s", operation, gqlErr.Message)
		}
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	e.requests.Add(ctx, 1, attrs)
	e.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	return result
}
