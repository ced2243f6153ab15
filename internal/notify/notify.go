// Package notify holds the delivery sinks the local gateway fires reminders
// through. A sink is the last hop: it takes fully-resolved copy and puts it
// in front of the user.
package notify

import "context"

// Delivery is one fired reminder handed to a sink.
type Delivery struct {
	Identifier string
	Title      string
	Body       string
	Sound      bool
}

// Sink delivers fired reminders.
//
// Ready probes whether the sink can deliver at all (credentials, chat
// reachability); the gateway maps it to the platform permission status.
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
	Ready(ctx context.Context) error
}
