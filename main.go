package main

import "rangepull/cmd"

func main() {
	cmd.Execute()
}
