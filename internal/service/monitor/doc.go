// Package monitor implements the monitoring loop service.
//
// Run loads configuration, opens the configured frame source, assembles the
// alert dispatchers, and then drives a single sequential loop: read a frame
// with a bounded wait, parse it, feed the state machine, evaluate escalation
// on every iteration, and hand fired alerts to an asynchronous delivery
// queue so slow transports never delay the next escalation check.
package monitor
