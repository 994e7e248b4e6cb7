// Command contratai is the terminal front-end of the Contrata.AI procurement
// assistant: an LLM agent that answers questions about Brazilian public
// procurement using the PNCP search API and IBGE reference data.
package main

import "github.com/contratai/contratai/internal/cli"

func main() {
	cli.Execute()
}
