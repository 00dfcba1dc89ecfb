// Package observability defines the interfaces and attribute conventions used
// for tracing, metrics and structured logging throughout cascade.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics]
// and [Logger] into a single injectable dependency. Adapters and the tool
// loop never receive an observer as a parameter: it travels in the
// [context.Context] via [ContextWithObserver] and is read back with
// [ObserverFromContext]. A nil observer is valid and means "record nothing".
package observability
