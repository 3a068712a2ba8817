// Package main is the entry point for the join-advisor binary.
package main

import (
	"os"

	"github.com/ekaya-inc/join-advisor/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
