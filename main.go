package main

import "github.com/arung-agamani/soundvault/cmd"

func main() {
	cmd.Execute()
}
