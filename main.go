package main

import "github.com/brk3/habitledger/cmd"

func main() {
	cmd.Execute()
}
