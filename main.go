package main

import "together-backend/cmd"

func main() {
	cmd.Run()
}
