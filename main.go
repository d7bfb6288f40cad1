package main

import "map-manager/cmd"

func main() {
	cmd.Execute()
}
