package main

import "github.com/RyanBlaney/sonido-labels/cmd"

func main() {
	cmd.Execute()
}
