// Package channeldb implements the persistence contract of the routing core
// on top of a kvdb (bbolt) backend: the accepted channel announcements, the
// latest per-direction channel updates, and the node announcements learned
// from gossip.
package channeldb

import (
	"github.com/lightningnetwork/lnd/kvdb"
)

const (
	// dbName is the file name of the database.
	dbName = "graph.db"
)

var (
	// channelBucket stores accepted channel announcements keyed by the
	// big-endian compact short channel id. Big-endian keys give free
	// ascending iteration, which the router's ordered channel view relies
	// on.
	channelBucket = []byte("graph-chan")

	// updateBucket stores the latest channel update per direction, keyed
	// by the big-endian short channel id followed by the direction byte.
	updateBucket = []byte("graph-update")

	// nodeBucket stores node announcements keyed by the node's serialized
	// compressed public key.
	nodeBucket = []byte("graph-node")
)

// DB is the primary datastore of the routing core. It holds the channel
// graph's durable state between restarts.
type DB struct {
	kvdb.Backend
}

// Open opens (creating if necessary) the channel database at the given
// directory path.
func Open(dbPath string) (*DB, error) {
	backend, err := kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            dbPath,
		DBFileName:        dbName,
		NoFreelistSync:    true,
		AutoCompact:       false,
		AutoCompactMinAge: kvdb.DefaultBoltAutoCompactMinAge,
		DBTimeout:         kvdb.DefaultDBTimeout,
	})
	if err != nil {
		return nil, err
	}

	return NewWithBackend(backend)
}

// NewWithBackend wraps an existing kvdb backend, creating the graph buckets
// if they do not yet exist.
func NewWithBackend(backend kvdb.Backend) (*DB, error) {
	db := &DB{Backend: backend}

	err := kvdb.Update(backend, func(tx kvdb.RwTx) error {
		if _, err := tx.CreateTopLevelBucket(channelBucket); err != nil {
			return err
		}
		if _, err := tx.CreateTopLevelBucket(updateBucket); err != nil {
			return err
		}
		if _, err := tx.CreateTopLevelBucket(nodeBucket); err != nil {
			return err
		}
		return nil
	}, func() {})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Close terminates the underlying database handle manually.
func (d *DB) Close() error {
	return d.Backend.Close()
}
