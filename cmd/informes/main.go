// Package main is the entry point for the informes CLI tool.
package main

import (
	"github.com/afelipfo/informes-med/internal/cmd"
)

func main() {
	cmd.Execute()
}
