// Package instance provides the ServiceInstance domain entity: a concrete
// network address serving a named service, tracked by the registry and
// health loop.
package instance

import (
	"strconv"
	"time"
)

// State is the health state of a registered instance.
type State string

const (
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
	StateDraining  State = "draining"
)

// Protocol is the upstream scheme used to reach an instance.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// Instance is one concrete address backing a service.
type Instance struct {
	ID                  string
	ServiceName         string
	InstanceID          string
	Host                string
	Port                int
	Protocol            Protocol
	Weight              int
	State               State
	LastHealthCheck     time.Time
	HealthCheckURL      string
	HealthCheckInterval time.Duration
	Metadata            map[string]string
	RegisteredAt        time.Time
}

// Eligible reports whether this instance may be picked by the load
// balancer. Draining instances accept no new traffic.
func (i *Instance) Eligible() bool {
	return i.State == StateHealthy
}

// BaseURL returns the scheme://host:port prefix used to build forwarded
// request URLs.
func (i *Instance) BaseURL() string {
	scheme := string(i.Protocol)
	if scheme == "" {
		scheme = string(ProtocolHTTP)
	}
	return scheme + "://" + i.Host + ":" + strconv.Itoa(i.Port)
}

// Validate checks the invariants an admin-supplied Instance must satisfy.
func (i *Instance) Validate() error {
	if i.ServiceName == "" {
		return ErrEmptyServiceName
	}
	if i.InstanceID == "" {
		return ErrEmptyInstanceID
	}
	if i.Host == "" {
		return ErrEmptyHost
	}
	if i.Port <= 0 || i.Port > 65535 {
		return ErrInvalidPort
	}
	if i.Weight < 0 {
		return ErrInvalidWeight
	}
	switch i.Protocol {
	case "", ProtocolHTTP, ProtocolHTTPS:
	default:
		return ErrInvalidProtocol
	}
	return nil
}
