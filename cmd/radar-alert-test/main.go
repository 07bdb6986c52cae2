package main

import "github.com/kevinyea/Radar-sensor-pi-SEN0395/cmd/radar-alert-test/cmd"

func main() {
	cmd.Execute()
}
