package main

import "nubes-server/cmd"

func main() {
	cmd.Execute()
}
