package main

import (
	"fmt"
	"os"

	"inferd/internal/inferctl"
)

func main() {
	if err := inferctl.BuildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
