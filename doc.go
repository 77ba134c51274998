/*
Package tether is a small command host for desktop-style applications: a UI
(a webview frontend, an MCP client or a terminal) invokes named commands, and
the host runs them and hands back their text output.

The built-in command is "run_python", which runs "python3 app.py" in the host's
base directory and returns whatever the script wrote to standard output,
decoded as UTF-8 with invalid sequences replaced by U+FFFD.

# Concept

The Host owns an explicit command registry. Process-backed commands are
described by domain.Command (interpreter, script, timeout, exit and decoding
policies) and executed by the process runner; in-process handlers can be
registered with RegisterFunc. Every transport goes through Host.Invoke, which
bounds concurrency, serializes exclusive commands, fires lifecycle hooks and
records the invocation in a bounded history.

Failures never abort the host. A missing interpreter, a missing script, a
timeout or (under the "fail" exit policy) a non-zero exit status are returned
as errors matching the sentinels in pkg/domain.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/tether"
	)

	func main() {
		host, err := tether.New(tether.WithBaseDir("./app"))
		if err != nil {
			log.Fatal(err)
		}

		res, err := host.Invoke(context.Background(), "run_python")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(res.Output)
	}

# Transports

The cmd/tether binary exposes the host over HTTP (for a webview frontend), over
MCP (stdio or SSE) and as one-shot CLI invocations.
*/
package tether
