// Command seqmin evaluates, optimizes and minimizes integer sequence
// programs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/seqmin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seqmin:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
