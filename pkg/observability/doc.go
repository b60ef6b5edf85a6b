/*
Package observability provides tools for monitoring the arbor engine.

Everything here is built on domain.LifecycleHooks: Prometheus collectors
that count iterations, created nodes and stop reasons, structured logging
hooks, and CombineHooks to fan one event out to several hook sets.
*/
package observability
