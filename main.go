package main

import "github.com/bgokden/labelsplit/cmd"

func main() {
	cmd.Execute()
}
