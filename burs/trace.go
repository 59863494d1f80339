package burs

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'burgo.burs'.
func tracer() tracing.Trace {
	return tracing.Select("burgo.burs")
}
