/*
Package dsl builds hand-made mazes with a fluent API.

Generated mazes come from schema.Config; the builder is for small fixed
layouts such as tutorials and tests, where every link and probability is
chosen by hand.

Example usage:

	b := dsl.New(3, 2, 1)
	b.Room(0).Door(0).To(1).As("hall")
	b.Room(1).Door(1).To(2).Prob(0.5).As("gate")
	b.Room(2).Goal(0)
	b.Lift(1, "hall", "gate").Prob(0.9)

	mz, err := b.Build()
	if err != nil {
		return err
	}
	eng, err := metamaze.NewFromMaze(mz, mazemap.MetaMap)
*/
package dsl
