// Command statetree runs scenarios against state containers and inspects
// their documents and journals.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/statetree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
