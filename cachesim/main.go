// Package main is the entry of the cachesim command.
package main

import "github.com/sarchlab/cachemodel/cachesim/cmd"

func main() {
	cmd.Execute()
}
