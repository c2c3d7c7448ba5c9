// Command ticketsearch runs the hybrid ticket search service.
package main

import (
	"fmt"
	"os"

	"github.com/eruditedesk/ticketsearch/cmd/ticketsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
