// Command drawsync mirrors lottery draw results into a local database.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/drawsync/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
