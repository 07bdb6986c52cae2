package main

import "github.com/kevinyea/Radar-sensor-pi-SEN0395/cmd/radar-replay/cmd"

func main() {
	cmd.Execute()
}
