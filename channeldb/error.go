package channeldb

import "errors"

var (
	// ErrChannelNotFound is returned when a targeted channel can't be
	// found within the database.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNodeNotFound is returned when a targeted node can't be found
	// within the database.
	ErrNodeNotFound = errors.New("node not found")

	// ErrGraphNotInitialized is returned when the graph buckets have not
	// yet been created.
	ErrGraphNotInitialized = errors.New("graph db not initialized")
)
