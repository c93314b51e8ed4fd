/*
Package ports defines the driven interfaces of the engine: how flows are
loaded, how session state is persisted between turns, and how the language
model is reached.

Adapters (memory, redis, http, mcp, openai) implement or consume these
contracts; the runtime depends only on the interfaces.
*/
package ports
