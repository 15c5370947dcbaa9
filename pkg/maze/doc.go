/*
Package maze implements the probabilistic maze model.

A Maze is a set of rooms linked by contexts. Level-0 contexts answer to
physical doors and lead from one room to another; contexts at higher levels
link lower-level contexts, so taking a door can schedule consequences that
surface several moves later and in other places.

Every probabilistic link carries a Signature. Whether a link is open in a
given instance is derived from the signature ids and the instance seed, so
two clones of a maze built with the same seed always agree.

Components are stored in two arenas (Rooms and Contexts) and refer to each
other by index through Ref, which keeps Clone a plain copy.
*/
package maze
