package lnwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"net"
)

// addressType specifies the network protocol and version that should be used
// when connecting to a node at a particular address.
type addressType uint8

const (
	// tcp4Addr denotes an IPv4 TCP address.
	tcp4Addr addressType = 1

	// tcp6Addr denotes an IPv6 TCP address.
	tcp6Addr addressType = 2
)

// WriteElement is a one-stop shop to write the big endian representation of
// any element which is to be serialized for a message digest or a database
// record.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		var b [1]byte
		b[0] = e
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case uint16:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case uint32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case uint64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case MilliSatoshi:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(e))
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case ChanUpdateMsgFlags:
		var b [1]byte
		b[0] = uint8(e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case ChanUpdateChanFlags:
		var b [1]byte
		b[0] = uint8(e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case QueryEncoding:
		var b [1]byte
		b[0] = uint8(e)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case Sig:
		if _, err := w.Write(e[:]); err != nil {
			return err
		}

	case NodeAlias:
		if _, err := w.Write(e[:]); err != nil {
			return err
		}

	case [33]byte:
		if _, err := w.Write(e[:]); err != nil {
			return err
		}

	case []byte:
		if _, err := w.Write(e); err != nil {
			return err
		}

	case ShortChannelID:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], e.ToUint64())
		if _, err := w.Write(b[:]); err != nil {
			return err
		}

	case []ShortChannelID:
		if err := WriteElement(w, uint16(len(e))); err != nil {
			return err
		}
		for _, chanID := range e {
			if err := WriteElement(w, chanID); err != nil {
				return err
			}
		}

	case ErrorData:
		if err := WriteElement(w, uint16(len(e))); err != nil {
			return err
		}
		if _, err := w.Write(e); err != nil {
			return err
		}

	case *RawFeatureVector:
		if e == nil {
			return fmt.Errorf("cannot write nil feature vector")
		}
		if err := e.Encode(w); err != nil {
			return err
		}

	case color.RGBA:
		if err := WriteElements(w, e.R, e.G, e.B); err != nil {
			return err
		}

	case *net.TCPAddr:
		if err := writeTCPAddr(w, e); err != nil {
			return err
		}

	case []net.Addr:
		// First, we'll encode all the addresses into an intermediate
		// buffer. We need to do this in order to compute the total
		// length of the addresses.
		var addrBuf bytes.Buffer
		for _, address := range e {
			tcpAddr, ok := address.(*net.TCPAddr)
			if !ok {
				return fmt.Errorf("unsupported address type "+
					"%T", address)
			}
			if err := writeTCPAddr(&addrBuf, tcpAddr); err != nil {
				return err
			}
		}

		// With the addresses fully encoded, we can now write out the
		// number of bytes needed to encode them.
		addrLen := addrBuf.Len()
		if err := WriteElement(w, uint16(addrLen)); err != nil {
			return err
		}
		if addrLen > 0 {
			if _, err := w.Write(addrBuf.Bytes()); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown type in WriteElement: %T", e)
	}

	return nil
}

// WriteElements is writes each element in the elements slice to the passed
// io.Writer using WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadElement is a one-stop utility function to deserialize any datastructure
// encoded using the serialization format of this package.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0]

	case *uint16:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint16(b[:])

	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint32(b[:])

	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint64(b[:])

	case *MilliSatoshi:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = MilliSatoshi(binary.BigEndian.Uint64(b[:]))

	case *ChanUpdateMsgFlags:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = ChanUpdateMsgFlags(b[0])

	case *ChanUpdateChanFlags:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = ChanUpdateChanFlags(b[0])

	case *QueryEncoding:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = QueryEncoding(b[0])

	case *Sig:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *NodeAlias:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *[33]byte:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case []byte:
		if _, err := io.ReadFull(r, e); err != nil {
			return err
		}

	case *ShortChannelID:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = NewShortChanIDFromInt(binary.BigEndian.Uint64(b[:]))

	case *[]ShortChannelID:
		var numIDs uint16
		if err := ReadElement(r, &numIDs); err != nil {
			return err
		}
		chanIDs := make([]ShortChannelID, numIDs)
		for i := uint16(0); i < numIDs; i++ {
			if err := ReadElement(r, &chanIDs[i]); err != nil {
				return err
			}
		}
		*e = chanIDs

	case *ErrorData:
		var dataLen uint16
		if err := ReadElement(r, &dataLen); err != nil {
			return err
		}
		data := make(ErrorData, dataLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return err
		}
		*e = data

	case **RawFeatureVector:
		fv := NewRawFeatureVector()
		if err := fv.Decode(r); err != nil {
			return err
		}
		*e = fv

	case *color.RGBA:
		if err := readElements(r, &e.R, &e.G, &e.B); err != nil {
			return err
		}

	case *[]net.Addr:
		var addrLen uint16
		if err := ReadElement(r, &addrLen); err != nil {
			return err
		}

		var (
			addrs     []net.Addr
			bytesRead uint16
		)
		for bytesRead < addrLen {
			addr, n, err := readTCPAddr(r)
			if err != nil {
				return err
			}
			addrs = append(addrs, addr)
			bytesRead += n
		}
		*e = addrs

	default:
		return fmt.Errorf("unknown type in ReadElement: %T", e)
	}

	return nil
}

// ReadElements deserializes a variable number of elements into the passed
// io.Reader, with each element being deserialized according to the
// ReadElement function.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// readElements is an alias kept so message decoders read symmetrically with
// their encoders.
func readElements(r io.Reader, elements ...interface{}) error {
	return ReadElements(r, elements...)
}

// writeTCPAddr serializes a TCP address into its compact form: a descriptor
// byte followed by the raw ip bytes and the port.
func writeTCPAddr(w io.Writer, addr *net.TCPAddr) error {
	if addr == nil {
		return fmt.Errorf("cannot write nil TCPAddr")
	}

	if addr.IP.To4() != nil {
		var descriptor [1]byte
		descriptor[0] = uint8(tcp4Addr)
		if _, err := w.Write(descriptor[:]); err != nil {
			return err
		}
		if _, err := w.Write(addr.IP.To4()); err != nil {
			return err
		}
	} else {
		var descriptor [1]byte
		descriptor[0] = uint8(tcp6Addr)
		if _, err := w.Write(descriptor[:]); err != nil {
			return err
		}
		if _, err := w.Write(addr.IP.To16()); err != nil {
			return err
		}
	}

	var port [2]byte
	binary.BigEndian.PutUint16(port[:], uint16(addr.Port))
	_, err := w.Write(port[:])
	return err
}

// readTCPAddr reads a single serialized TCP address, returning the address
// along with the number of bytes consumed.
func readTCPAddr(r io.Reader) (*net.TCPAddr, uint16, error) {
	var descriptor [1]byte
	if _, err := io.ReadFull(r, descriptor[:]); err != nil {
		return nil, 0, err
	}

	var (
		ip   net.IP
		size uint16
	)
	switch addressType(descriptor[0]) {
	case tcp4Addr:
		var ipBytes [4]byte
		if _, err := io.ReadFull(r, ipBytes[:]); err != nil {
			return nil, 0, err
		}
		ip = net.IP(ipBytes[:])
		size = 1 + 4 + 2

	case tcp6Addr:
		var ipBytes [16]byte
		if _, err := io.ReadFull(r, ipBytes[:]); err != nil {
			return nil, 0, err
		}
		ip = net.IP(ipBytes[:])
		size = 1 + 16 + 2

	default:
		return nil, 0, fmt.Errorf("unknown address type: %v",
			descriptor[0])
	}

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return nil, 0, err
	}

	return &net.TCPAddr{
		IP:   ip,
		Port: int(binary.BigEndian.Uint16(port[:])),
	}, size, nil
}
