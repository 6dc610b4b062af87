package routing

import "errors"

var (
	// ErrRouterShuttingDown is returned if the router is in the process of
	// shutting down.
	ErrRouterShuttingDown = errors.New("router shutting down")

	// ErrRouteNotFound is returned when either the source or the target
	// of a route request is not present in the working graph, or no path
	// between them exists.
	ErrRouteNotFound = errors.New("route not found")

	// ErrCannotRouteToSelf is returned when the source and the target of
	// a route request are the same node.
	ErrCannotRouteToSelf = errors.New("cannot route to self")

	// ErrInvalidSignature is returned when a gossip message fails its
	// signature check. The failure is reported back to the offending peer
	// as a protocol error.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnknownChainHash is returned when a message references a chain
	// other than the one this router serves.
	ErrUnknownChainHash = errors.New("unknown chain hash")
)
