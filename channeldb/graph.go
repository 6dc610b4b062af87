package channeldb

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/22388o/eclair/lnwire"
)

// channelKey renders the bucket key of a channel: the big-endian compact
// short channel id, so a cursor walks channels in ascending id order.
func channelKey(chanID lnwire.ShortChannelID) [8]byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], chanID.ToUint64())
	return key
}

// updateKey renders the bucket key of a directional channel update: the
// channel key followed by the direction bit of the update's channel flags.
func updateKey(chanID lnwire.ShortChannelID, isNode1 bool) [9]byte {
	var key [9]byte
	binary.BigEndian.PutUint64(key[:8], chanID.ToUint64())
	if !isNode1 {
		key[8] = 1
	}
	return key
}

// AddChannel persists an accepted channel announcement.
func (d *DB) AddChannel(ann *lnwire.ChannelAnnouncement) error {
	record, err := encodeRecord(func(w io.Writer) error {
		return serializeChannelAnnouncement(w, ann)
	})
	if err != nil {
		return err
	}

	key := channelKey(ann.ShortChannelID)
	return kvdb.Update(d.Backend, func(tx kvdb.RwTx) error {
		channels := tx.ReadWriteBucket(channelBucket)
		if channels == nil {
			return ErrGraphNotInitialized
		}
		return channels.Put(key[:], record)
	}, func() {})
}

// RemoveChannel deletes a channel announcement along with both of its
// directional updates.
func (d *DB) RemoveChannel(chanID lnwire.ShortChannelID) error {
	key := channelKey(chanID)
	keyDir1 := updateKey(chanID, true)
	keyDir2 := updateKey(chanID, false)

	return kvdb.Update(d.Backend, func(tx kvdb.RwTx) error {
		channels := tx.ReadWriteBucket(channelBucket)
		updates := tx.ReadWriteBucket(updateBucket)
		if channels == nil || updates == nil {
			return ErrGraphNotInitialized
		}

		if err := channels.Delete(key[:]); err != nil {
			return err
		}
		if err := updates.Delete(keyDir1[:]); err != nil {
			return err
		}
		return updates.Delete(keyDir2[:])
	}, func() {})
}

// AddChannelUpdate persists a directional channel update for the first time.
func (d *DB) AddChannelUpdate(update *lnwire.ChannelUpdate) error {
	return d.putChannelUpdate(update)
}

// UpdateChannelUpdate replaces a previously stored directional channel
// update.
func (d *DB) UpdateChannelUpdate(update *lnwire.ChannelUpdate) error {
	return d.putChannelUpdate(update)
}

func (d *DB) putChannelUpdate(update *lnwire.ChannelUpdate) error {
	record, err := encodeRecord(func(w io.Writer) error {
		return serializeChannelUpdate(w, update)
	})
	if err != nil {
		return err
	}

	key := updateKey(update.ShortChannelID, update.IsNode1())
	return kvdb.Update(d.Backend, func(tx kvdb.RwTx) error {
		updates := tx.ReadWriteBucket(updateBucket)
		if updates == nil {
			return ErrGraphNotInitialized
		}
		return updates.Put(key[:], record)
	}, func() {})
}

// AddNode persists a node announcement for the first time.
func (d *DB) AddNode(node *lnwire.NodeAnnouncement) error {
	return d.putNode(node)
}

// UpdateNode replaces a previously stored node announcement.
func (d *DB) UpdateNode(node *lnwire.NodeAnnouncement) error {
	return d.putNode(node)
}

func (d *DB) putNode(node *lnwire.NodeAnnouncement) error {
	record, err := encodeRecord(func(w io.Writer) error {
		return serializeNodeAnnouncement(w, node)
	})
	if err != nil {
		return err
	}

	return kvdb.Update(d.Backend, func(tx kvdb.RwTx) error {
		nodes := tx.ReadWriteBucket(nodeBucket)
		if nodes == nil {
			return ErrGraphNotInitialized
		}
		return nodes.Put(node.NodeID[:], record)
	}, func() {})
}

// RemoveNode deletes the node announcement stored for the given node id, if
// any.
func (d *DB) RemoveNode(nodeID [33]byte) error {
	return kvdb.Update(d.Backend, func(tx kvdb.RwTx) error {
		nodes := tx.ReadWriteBucket(nodeBucket)
		if nodes == nil {
			return ErrGraphNotInitialized
		}
		return nodes.Delete(nodeID[:])
	}, func() {})
}

// ListChannels returns all persisted channel announcements keyed by their
// short channel id.
func (d *DB) ListChannels() (map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement,
	error) {

	channels := make(map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement)
	err := kvdb.View(d.Backend, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(channelBucket)
		if bucket == nil {
			return ErrGraphNotInitialized
		}

		return bucket.ForEach(func(k, v []byte) error {
			ann, err := deserializeChannelAnnouncement(
				bytes.NewReader(v),
			)
			if err != nil {
				return err
			}
			channels[ann.ShortChannelID] = ann
			return nil
		})
	}, func() {
		channels = make(
			map[lnwire.ShortChannelID]*lnwire.ChannelAnnouncement,
		)
	})
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// ListChannelUpdates returns all persisted channel updates.
func (d *DB) ListChannelUpdates() ([]*lnwire.ChannelUpdate, error) {
	var updates []*lnwire.ChannelUpdate
	err := kvdb.View(d.Backend, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(updateBucket)
		if bucket == nil {
			return ErrGraphNotInitialized
		}

		return bucket.ForEach(func(k, v []byte) error {
			update, err := deserializeChannelUpdate(
				bytes.NewReader(v),
			)
			if err != nil {
				return err
			}
			updates = append(updates, update)
			return nil
		})
	}, func() {
		updates = nil
	})
	if err != nil {
		return nil, err
	}

	return updates, nil
}

// FetchNode returns the persisted node announcement for the given node id.
func (d *DB) FetchNode(nodeID [33]byte) (*lnwire.NodeAnnouncement, error) {
	var node *lnwire.NodeAnnouncement
	err := kvdb.View(d.Backend, func(tx kvdb.RTx) error {
		nodes := tx.ReadBucket(nodeBucket)
		if nodes == nil {
			return ErrGraphNotInitialized
		}

		record := nodes.Get(nodeID[:])
		if record == nil {
			return ErrNodeNotFound
		}

		var err error
		node, err = deserializeNodeAnnouncement(bytes.NewReader(record))
		return err
	}, func() {
		node = nil
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}
