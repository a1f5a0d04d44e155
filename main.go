package main

import "kalimati/cmd"

func main() {
	cmd.Execute()
}
