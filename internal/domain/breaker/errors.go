package breaker

import "errors"

var ErrStateNotFound = errors.New("breaker: circuit breaker state not found")
