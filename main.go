package main

import "alarm-clock-backend/cmd"

func main() {
	cmd.Run()
}
