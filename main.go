package main

import "github.com/brogergvhs/mangadl/cmd"

func main() {
	cmd.Execute()
}
