/*
Package metamaze is a probabilistic maze engine with a goal-directed planner.

A maze is a set of rooms joined by doors. Doors are driven by contexts that
may only open with some probability, and higher-level contexts make the
outcome of a door depend on the path that led to it. The planner maps the
maze, searches the map for the most likely route to a goal and learns from
every door actually taken.

The Engine type ties one generated maze to its planner:

	cfg := schema.Default()
	eng, err := metamaze.New(cfg, metamaze.WithLogger(logger))
	if err != nil {
	    return err
	}
	advice, err := eng.Plan(ctx, 0)
	if err != nil {
	    return err
	}
	if advice.Reachable && !advice.Here {
	    result, err := eng.Step(ctx, advice.Door)
	    ...
	}

Sessions, persistence and transports live under pkg/; the core maze and map
are in pkg/maze and pkg/mazemap.
*/
package metamaze
