// Package source provides radar frame feeds behind a common Source
// interface: the serial device stream the sensor natively speaks, an MQTT
// subscription for gateway-bridged deployments, and an in-memory script for
// tests and offline replay.
//
// Every source delivers frames over a channel so the monitor loop can wait
// on new data with a bounded timeout and keep its escalation ticks firing
// during sensor silence.
package source
