package main

import (
	"fmt"
	"github.com/kglearn/frontgate/internal/cli"
	"os"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
