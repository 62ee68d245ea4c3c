package main

import "apdudispatch/cmd"

func main() {
	cmd.Execute()
}
