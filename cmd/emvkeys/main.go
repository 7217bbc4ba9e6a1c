package main

import (
	"fmt"
	"os"

	"github.com/gregLibert/emv-keys/cmd/emvkeys/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
