// Command coolc compiles a COOL source file to RISC-V 32-bit assembly.
package main

import (
	"os"

	"github.com/coolc/coolc/cmd/coolc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
