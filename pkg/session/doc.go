/*
Package session hosts maze sessions on top of a StateStore.

Manager serializes access to a session across goroutines (ref-counted local
mutexes) and, optionally, across replicas (a DistributedLocker). Host builds
on it: it creates sessions from a MazeLibrary, keeps live engines in memory
and rebuilds them by replaying the stored door history whenever the cached
engine is missing or stale.
*/
package session
