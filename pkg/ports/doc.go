/*
Package ports defines the driven ports (interfaces) of the arbor explorer.

These interfaces decouple the exploration engine from its collaborators, so that
any scoring strategy or storage backend can be plugged in.

# Key Interfaces

  - Evaluator: Scores a candidate prompt and proposes improved candidates.
  - Archive: Persists finished run snapshots for later inspection and rendering.
  - Explorer: Runs a whole exploration per request, for the HTTP and MCP drivers.
*/
package ports
