// main is the entry point for the grantscope CLI.
package main

import (
	"github.com/grantops/grantscope/cmd"
	"github.com/grantops/grantscope/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
