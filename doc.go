/*
Package voiceflow executes authored call flows for real-time voice agents.

A flow is a directed graph of nodes: static and generative conversation
steps, HTTP and sandboxed-code side effects, variable updates, transfers,
and hangups. The engine advances a call one turn at a time: the host feeds
in the caller's transcribed utterance and receives what to speak next and
whether to gather, transfer, or hang up.

# Architecture

The turn core is stateless. Bindings (the call's variables) and the
conversation history travel in with every turn and leave with the result,
so one engine instance serves any number of concurrent calls; the session
layer owns identity, locking, and persistence around it. Flow sources and
session stores are ports with in-memory and Redis adapters, and the same
core is exposed over REST, MCP, and a terminal simulator.

# Usage

	loader, _ := memory.NewFromDocuments(map[string][]byte{
		"support": flowJSON,
	})
	eng, err := voiceflow.New(loader, voiceflow.WithOpenAI(apiKey))
	if err != nil {
		log.Fatal(err)
	}

	sess, turn, _ := eng.StartCall(ctx, "support")
	speak(turn.Response)

	for !sess.Ended {
		sess, turn, _ = eng.Turn(ctx, sess.ID, listen())
		speak(turn.Response)
	}

Routing is deterministic-first: authored equation conditions always win
over model-proposed transitions, so the same state and input reproduce the
same path through the graph.
*/
package voiceflow
