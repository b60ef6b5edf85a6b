/*
Package domain contains the core domain models of the arbor explorer.

It defines the entities shared by the store, the exploration engine and every
consumer of a finished run. The package is kept pure and free of I/O, following
the same Hexagonal Architecture split as the adapters around it.

# Key Entities

  - Node: One scored candidate prompt in the exploration tree.
  - Config: The pruning and termination policy of a run.
  - FrontierEntry: A node eligible for expansion, with its score.
  - Snapshot: A serializable, read-only view of a run for visualization and archiving.
  - LifecycleHooks: Optional observers of the exploration loop.
*/
package domain
