/*
Package ports defines the driven ports (interfaces) for the metamaze engine.

These interfaces decouple the maze and the planner from storage, transports and
whoever is choosing doors, so the same engine can run against an in-memory
store in tests and a Redis cluster in production.

# Key Interfaces

  - Agent: Chooses a door for the current room and learns from the outcome.
  - MazeLibrary: Provides named maze configurations (e.g., from Loam or memory).
  - StateStore: Persists and loads session State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
