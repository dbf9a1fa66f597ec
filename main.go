package main

import "twinflame-backend/cmd"

func main() {
	cmd.Run()
}
