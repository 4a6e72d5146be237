package main

import "github.com/rog555/ccpr/cmd"

func main() {
	cmd.Execute()
}
