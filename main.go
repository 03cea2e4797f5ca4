package main

import "macsim/cmd"

func main() {
	cmd.Execute()
}
