/*
Package mazemap plans routes through probabilistic mazes.

A Map is built by exploring clones of a maze and recording one
RoomDescriptor per reached room, linked by ConnectingRooms that carry the
signature of the link taken. Three modes exist:

  - RoomMap ignores probabilities and covers every room, for dumps.
  - MetaMap assumes every link may open; outcomes stay unresolved until a
    door is actually taken.
  - InstanceMap keeps only the links open in the mapped instance.

GotoGoal samples SearchPasses trials over unresolved links and returns the
door most often leading to the goal. A map set holds one MetaMap per
candidate instance and plans with a speculative walk undone through
Backup and Restore.

ChooseDoor commits a move and resolves every edge whose signature matches
the one taken, so one observation generalizes to all identical links.
*/
package mazemap
