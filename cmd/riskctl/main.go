// The riskctl binary is the operator CLI for RiskNet.
package main

import (
	"fmt"
	"os"

	"github.com/turtacn/risknet/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
