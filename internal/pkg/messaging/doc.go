// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Business code depends on Publisher and Consumer only. The Kafka and NATS
// drivers talk to real brokers; the memory driver delivers synchronously
// inside the process, so a publisher observes its consumers' errors.
package messaging
