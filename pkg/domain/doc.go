/*
Package domain contains the session-level models shared by the metamaze engine,
its stores and its transports.

The maze itself lives in pkg/maze and the planner in pkg/mazemap. This package
only describes what a hosted session looks like from the outside, so that
stores can persist it and transports can report on it without importing the
engine.

# Key Entities

  - State: the replayable snapshot of a session (maze name, goal, door history).
  - Move: one door choice and whether the agent actually moved.
  - LifecycleHooks: callbacks fired by the engine for observability.
  - StateDiff: what changed between two snapshots of the same session.
*/
package domain
