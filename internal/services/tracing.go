package services

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "services/tutor"

func tracer() trace.Tracer { return otel.Tracer(tracerName) }

func conversationAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("conversation.id", id.String())
}

func studentAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("student.id", id.String())
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
