package main

import "github.com/kevinyea/Radar-sensor-pi-SEN0395/cmd/radar-monitor/cmd"

func main() {
	cmd.Execute()
}
