package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/bft-labs/wow/internal/domain"
)

// Layout (big-endian):
//
//	magic    [4]byte "WOW1"
//	version  uint8
//	source   int32
//	interval int64  seconds
//	updated  int64  unix nanoseconds
//	flags    uint8  bit0 running, bit1 stop requested
//	pathLen  uint32
//	path     [pathLen]byte
//	crc      uint32 IEEE over all preceding bytes
const (
	codecVersion = 1

	flagRunning       = 1 << 0
	flagStopRequested = 1 << 1

	headerLen  = 4 + 1 + 4 + 8 + 8 + 1 + 4
	trailerLen = 4
)

var magic = [4]byte{'W', 'O', 'W', '1'}

var (
	errShortRecord  = errors.New("record truncated")
	errBadMagic     = errors.New("bad magic")
	errBadVersion   = errors.New("unsupported version")
	errBadChecksum  = errors.New("checksum mismatch")
	errTrailingData = errors.New("trailing data")
)

// Encode serializes st into the wow.conf record.
func Encode(st domain.State) ([]byte, error) {
	if uint64(len(st.CurrentImagePath)) > math.MaxUint32 {
		return nil, fmt.Errorf("image path too long: %d bytes", len(st.CurrentImagePath))
	}

	var buf bytes.Buffer
	buf.Grow(headerLen + len(st.CurrentImagePath) + trailerLen)

	buf.Write(magic[:])
	buf.WriteByte(codecVersion)

	var flags uint8
	if st.Running {
		flags |= flagRunning
	}
	if st.StopRequested {
		flags |= flagStopRequested
	}

	fields := []any{
		int32(st.Source),
		int64(st.Interval / time.Second),
		st.LastUpdateAt.UnixNano(),
		flags,
		uint32(len(st.CurrentImagePath)),
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.BigEndian, f); err != nil {
			return nil, err
		}
	}
	buf.WriteString(st.CurrentImagePath)

	sum := crc32.ChecksumIEEE(buf.Bytes())
	if err := binary.Write(&buf, binary.BigEndian, sum); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a wow.conf record. It never returns a partially filled state.
func Decode(data []byte) (domain.State, error) {
	if len(data) < headerLen+trailerLen {
		return domain.State{}, errShortRecord
	}

	body, trailer := data[:len(data)-trailerLen], data[len(data)-trailerLen:]
	if !bytes.Equal(body[:4], magic[:]) {
		return domain.State{}, errBadMagic
	}
	if body[4] != codecVersion {
		return domain.State{}, fmt.Errorf("%w: %d", errBadVersion, body[4])
	}
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(trailer) {
		return domain.State{}, errBadChecksum
	}

	r := bytes.NewReader(body[5:])
	var (
		source   int32
		interval int64
		updated  int64
		flags    uint8
		pathLen  uint32
	)
	for _, f := range []any{&source, &interval, &updated, &flags, &pathLen} {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return domain.State{}, errShortRecord
		}
	}
	if uint64(r.Len()) < uint64(pathLen) {
		return domain.State{}, errShortRecord
	}
	if uint64(r.Len()) > uint64(pathLen) {
		return domain.State{}, errTrailingData
	}
	path := make([]byte, pathLen)
	if _, err := io.ReadFull(r, path); err != nil {
		return domain.State{}, errShortRecord
	}

	return domain.State{
		Source:           domain.Source(source),
		Interval:         time.Duration(interval) * time.Second,
		LastUpdateAt:     time.Unix(0, updated).UTC(),
		Running:          flags&flagRunning != 0,
		StopRequested:    flags&flagStopRequested != 0,
		CurrentImagePath: string(path),
	}, nil
}
