package instance

import "errors"

// Domain-specific errors for the ServiceInstance entity.
var (
	ErrEmptyServiceName  = errors.New("instance: service name cannot be empty")
	ErrEmptyInstanceID   = errors.New("instance: instance id cannot be empty")
	ErrEmptyHost         = errors.New("instance: host cannot be empty")
	ErrInvalidPort       = errors.New("instance: port must be between 1 and 65535")
	ErrInvalidWeight     = errors.New("instance: weight cannot be negative")
	ErrInvalidProtocol   = errors.New("instance: protocol must be \"http\" or \"https\"")
	ErrInstanceNotFound  = errors.New("instance: not found")
	ErrDuplicateInstance = errors.New("instance: an instance with this service name and instance id already exists")
)
