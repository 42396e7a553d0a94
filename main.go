// Package main is the entry point for the fxa-oauth CLI
package main

import (
	"os"

	"github.com/jrschumacher/fxa-oauth/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
