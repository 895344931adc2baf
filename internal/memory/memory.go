// Package memory provides address based access to a program image that is
// prefixed by a 2 byte little endian load address.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of the load address header that precedes the memory content.
const HeaderSize = 2

// ErrOutOfBounds is returned for an address that is not covered by the image.
var ErrOutOfBounds = errors.New("address out of bounds")

// Reader provides address based read access.
type Reader interface {
	Byte(address int) (byte, error)
	Read(address, length int) ([]byte, error)
}

// Writer provides address based write access.
type Writer interface {
	Write(address int, b []byte) error
}

var (
	_ Reader = (*Image)(nil)
	_ Reader = (*Patch)(nil)
	_ Writer = (*Patch)(nil)
)

// Image is a read only view of a program image.
type Image struct {
	data        []byte
	loadAddress uint16
}

// New returns an image for the given buffer. The buffer is not copied and
// must not be modified while the image is in use.
func New(data []byte) (*Image, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("image of %d bytes has no load address header", len(data))
	}
	return &Image{
		data:        data,
		loadAddress: binary.LittleEndian.Uint16(data),
	}, nil
}

// LoadAddress returns the address that the first content byte is loaded to.
func (i *Image) LoadAddress() uint16 {
	return i.loadAddress
}

// Len returns the size of the whole buffer including the header.
func (i *Image) Len() int {
	return len(i.data)
}

// EndAddress returns the first address past the image content.
func (i *Image) EndAddress() int {
	return int(i.loadAddress) + len(i.data) - HeaderSize
}

// offset translates an address into a buffer offset.
func (i *Image) offset(address, length int) (int, error) {
	offset := HeaderSize - int(i.loadAddress) + address
	if offset < HeaderSize || length < 0 || offset+length > len(i.data) {
		return 0, fmt.Errorf("%w: $%04X+%d", ErrOutOfBounds, address, length)
	}
	return offset, nil
}

// Byte returns the byte at the given address.
func (i *Image) Byte(address int) (byte, error) {
	offset, err := i.offset(address, 1)
	if err != nil {
		return 0, err
	}
	return i.data[offset], nil
}

// Read returns a copy of length bytes starting at the given address.
func (i *Image) Read(address, length int) ([]byte, error) {
	offset, err := i.offset(address, length)
	if err != nil {
		return nil, err
	}
	b := make([]byte, length)
	copy(b, i.data[offset:])
	return b, nil
}

// Patch returns a mutable copy of the image. The image itself stays unmodified.
func (i *Image) Patch() *Patch {
	data := make([]byte, len(i.data))
	copy(data, i.data)
	return &Patch{
		Image: Image{
			data:        data,
			loadAddress: i.loadAddress,
		},
	}
}

// Patch is a mutable copy of an image.
type Patch struct {
	Image
}

// Write copies the given bytes to the given address.
func (p *Patch) Write(address int, b []byte) error {
	offset, err := p.offset(address, len(b))
	if err != nil {
		return err
	}
	copy(p.data[offset:], b)
	return nil
}

// Bytes returns the patched buffer including the load address header.
func (p *Patch) Bytes() []byte {
	return p.data
}
