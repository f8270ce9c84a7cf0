// Package main is the entry point of the socgen command.
package main

import "github.com/sarchlab/socgen/socgen/cmd"

func main() {
	cmd.Execute()
}
