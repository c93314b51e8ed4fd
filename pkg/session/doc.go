/*
Package session orchestrates call lifecycles on top of the stateless engine.

It owns session identity, per-call locking, history bookkeeping, and the
commit discipline: a turn's bindings and control-flow pointer are persisted
only after the engine has produced its result, so a crashed turn replays
cleanly from the previous state.
*/
package session
