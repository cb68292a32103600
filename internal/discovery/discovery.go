// Package discovery announces a node's diagnostic control plane over
// mDNS/DNS-SD, the same pure-Go approach used to advertise a KISS TNC over
// TCP: pick an instance name, publish a service record, and let a
// responder answer queries in the background for as long as the node
// runs.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type this stack answers queries for.
const ServiceType = "_wps-node._tcp"

// Announcer owns the background mDNS responder started by Announce.
type Announcer struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
}

// Announce publishes name on port under ServiceType and starts answering
// queries until Stop is called. networkID is attached as a TXT record so a
// browser can filter by network without connecting first.
func Announce(name string, port int, networkID uint8) (*Announcer, error) {
	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
		Text: map[string]string{"network_id": fmt.Sprintf("%d", networkID)},
	}

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: creating service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: creating responder: %w", err)
	}
	if _, err := responder.Add(svc); err != nil {
		return nil, fmt.Errorf("discovery: adding service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Announcer{responder: responder, cancel: cancel}

	go func() {
		_ = responder.Respond(ctx)
	}()

	return a, nil
}

// Stop halts the background responder.
func (a *Announcer) Stop() {
	a.cancel()
}
