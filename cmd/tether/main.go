// Command tether hosts UI-invocable commands over HTTP, MCP or the terminal.
package main

func main() {
	Execute()
}
