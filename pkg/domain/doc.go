/*
Package domain contains the core model of the VoiceFlow execution engine:
the authored flow graph (nodes, edges, variable declarations), the mutable
per-call state (variable bindings and conversation history), and the turn
result contract returned to the host after every conversational turn.

The graph is an immutable snapshot loaded once per call. All mutation during
a call happens on copies of the bindings owned by that call session; nothing
in this package is shared across sessions.
*/
package domain
