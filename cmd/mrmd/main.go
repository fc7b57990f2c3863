// mrmd is the CLI for collaborative markdown notebooks.
package main

import (
	"os"

	"github.com/mrmd/mrmd/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
