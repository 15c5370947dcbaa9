/*
Package runner drives agents through repeated maze trials.

Every trial resolves a fresh instance of the configured meta maze, picking the
instance seed by its frequency, and lets an agent walk it for a bounded number
of steps. At each step the planner's optimal door toward the most needed goal
is computed and compared with the agent's choice, so a Report tells both how
many goals an agent found and how often it agreed with the planner.

# Usage

	r := runner.New(cfg,
		runner.WithTrials(20),
		runner.WithMaxSteps(50),
		runner.WithAgent(runner.Random()),
	)

	report, err := r.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Successes(), report.Agreement())
*/
package runner
