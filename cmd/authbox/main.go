package main

import "github.com/jmcleod/authbox/cmd/authbox/cmd"

func main() {
	cmd.Execute()
}
