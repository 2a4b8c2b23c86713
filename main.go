package main

import "github.com/MyCarrier-DevOps/go-matchcommits/cmd"

func main() {
	cmd.Execute()
}
