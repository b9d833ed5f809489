// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"

	"go.opentelemetry.io/otel"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.GetTracerProvider().Tracer("github.com/metamodels/translatedurl/internal/attribute/translatedurl")

func (a *Attribute) startSpan(ctx context.Context, name string, attrs ...otelattr.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		otelattr.Int64("attribute.id", a.ID()),
		otelattr.String("collection.table", a.MetaModel().TableName()),
	)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
