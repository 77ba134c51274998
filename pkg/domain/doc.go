/*
Package domain contains the core domain models of the tether host.

It defines what the UI layer can call and what it gets back, and is kept free of
I/O so that every transport (HTTP, MCP, CLI) shares the same vocabulary.

# Key Entities

  - Command: Static definition of a process-backed command (interpreter, script, policies).
  - Descriptor: The UI-facing view of any registered command.
  - Result: The ephemeral output of a single invocation.
  - Record: The history view of a Result, including failures.
*/
package domain
