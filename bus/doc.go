// Package bus carries lifecycle and log messages from the executors to
// listeners such as console renderers. Delivery is synchronous: a slow
// listener blocks the sender.
package bus
