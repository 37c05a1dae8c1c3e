package main

import "github.com/codebar-ag/docs.clouddocs.ch/cmd"

func main() {
	cmd.Execute()
}
