// Package dispatch delivers alerts to external channels.
//
// It defines the Dispatcher contract the monitor core depends on, concrete
// transports (SMTP email, Telegram bot, RabbitMQ publication), a fan-out
// over several transports, and an asynchronous Queue that keeps slow
// deliveries off the monitor loop's tick path.
package dispatch
