package metamaze_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/pkg/dsl"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/schema"
)

// ExampleNewFromMaze plans over a maze laid out by hand.
func ExampleNewFromMaze() {
	b := dsl.New(2, 2, 1)
	b.Room(0).Door(0).To(1)
	b.Room(1).Goal(0)

	mz, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	eng, err := metamaze.NewFromMaze(mz, mazemap.RoomMap)
	if err != nil {
		log.Fatal(err)
	}

	advice, err := eng.Plan(context.Background(), 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("reachable=%v door=%d\n", advice.Reachable, advice.Door)
	// Output: reachable=true door=0
}

// ExampleNew walks a generated maze, following the planner until it has no advice.
func ExampleNew() {
	eng, err := metamaze.New(schema.Default())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for range 20 {
		advice, err := eng.Plan(ctx, 0)
		if err != nil || advice.Here || !advice.Reachable {
			break
		}
		if _, err := eng.Step(ctx, advice.Door); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println("goals reached:", eng.Reached())
}
