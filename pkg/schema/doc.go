// Package schema describes a maze and its planner as plain data.
//
// A Config is everything needed to rebuild the same maze and map: room,
// door and goal counts, per-level context counts, the seeds and the map type.
// Configs round-trip through YAML and JSON, decode from free-form maps and are
// validated before anything is built from them:
//
//	cfg, err := schema.Load("mazes/two-rooms.yaml")
//	if err != nil {
//	    return err
//	}
//	mz, err := cfg.BuildMaze()
//	if err != nil {
//	    return err
//	}
//	plan, err := cfg.BuildMap(mz)
//
// Rebuilding from an unchanged Config always yields an identical graph.
package schema
