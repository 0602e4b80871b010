// SPDX-License-Identifier: MIT

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	ConfigPathKey     = "config.path"
	ConfigRevisionKey = "config.revision"
	ConfigSectionKey  = "config.section"
	ConfigSectionsKey = "config.sections"
	ConfigTriggerKey  = "config.trigger"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// LoadAttributes creates span attributes for a configuration load.
func LoadAttributes(path, revision string, sections int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ConfigPathKey, path),
		attribute.String(ConfigRevisionKey, revision),
		attribute.Int(ConfigSectionsKey, sections),
	}
}

// ErrorAttributes creates span attributes for a failed operation.
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)),
	}
}
