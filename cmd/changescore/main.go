// main is the entry point of the changescore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/changescore/cmd"
	"github.com/huangsam/changescore/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
