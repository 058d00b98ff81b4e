package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const maxStreams = 16

// Stream is a single named block of output, such as a bitmap or a table of
// attributes.
type Stream struct {
	Name string
	Data []byte
}

// Payload is the serialized form of a Frame. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Payload struct {
	Streams []Stream
}

func (p *Payload) add(name string, b []byte) {
	p.Streams = append(p.Streams, Stream{Name: name, Data: b})
}

// Stream returns the data for the named stream, or nil.
func (p *Payload) Stream(name string) []byte {
	for _, s := range p.Streams {
		if s.Name == name {
			return s.Data
		}
	}
	return nil
}

func (p *Payload) need(name string, length int) ([]byte, error) {
	b := p.Stream(name)
	if len(b) < length {
		return nil, fmt.Errorf("%w: %s", errStream, name)
	}
	return b, nil
}

// Len returns the total size of every stream.
func (p *Payload) Len() int {
	n := 0
	for _, s := range p.Streams {
		n += len(s.Data)
	}
	return n
}

// Bytes returns every stream concatenated in order, which is how the data
// sits in the memory of the target machine.
func (p *Payload) Bytes() []byte {
	b := make([]byte, 0, p.Len())
	for _, s := range p.Streams {
		b = append(b, s.Data...)
	}
	return b
}

// MarshalBinary encodes the payload into binary form and returns the result
func (p *Payload) MarshalBinary() ([]byte, error) {
	if len(p.Streams) > maxStreams {
		return nil, fmt.Errorf("more than %d streams", maxStreams)
	}

	b := new(bytes.Buffer)

	// Write out the stream count followed by the name and length of each
	if err := binary.Write(b, binary.LittleEndian, uint32(len(p.Streams))); err != nil {
		return nil, err
	}
	for _, s := range p.Streams {
		if len(s.Name) > 0xff {
			return nil, fmt.Errorf("stream name %q too long", s.Name)
		}
		if err := b.WriteByte(byte(len(s.Name))); err != nil {
			return nil, err
		}
		if _, err := b.WriteString(s.Name); err != nil {
			return nil, err
		}
		if err := binary.Write(b, binary.LittleEndian, uint32(len(s.Data))); err != nil {
			return nil, err
		}
	}

	// Write out the streams
	for _, s := range p.Streams {
		if _, err := b.Write(s.Data); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// UnmarshalBinary decodes the payload from binary form
func (p *Payload) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	if count > maxStreams {
		return fmt.Errorf("more than %d streams", maxStreams)
	}

	streams := make([]Stream, count)
	lengths := make([]uint32, count)
	for i := range streams {
		n, err := r.ReadByte()
		if err != nil {
			return io.ErrUnexpectedEOF
		}
		name := make([]byte, n)
		if err := readFull(r, name); err != nil {
			return err
		}
		streams[i].Name = string(name)
		if err := binary.Read(r, binary.LittleEndian, &lengths[i]); err != nil {
			return err
		}
	}

	for i := range streams {
		if int64(lengths[i]) > int64(r.Len()) {
			return io.ErrUnexpectedEOF
		}
		streams[i].Data = make([]byte, lengths[i])
		if err := readFull(r, streams[i].Data); err != nil {
			return err
		}
	}

	if r.Len() > 0 {
		return fmt.Errorf("%d trailing bytes", r.Len())
	}

	p.Streams = streams

	return nil
}
