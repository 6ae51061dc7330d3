package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/pradiptha/bookstore/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_STOREFRONT_SERVICE)
