// Package device models the runtime contract kernels are written against: a
// memory allocator handing out flat typed buffers, and an ordered,
// non-blocking work stream. It is deliberately narrow; the interesting work
// happens in the kernels package.
package device

import (
	"log/slog"

	"github.com/graftml/graft/envconfig"
)

// Device pairs an allocator with a default stream.
type Device struct {
	alloc  *Allocator
	stream *Stream
}

func New(name string) *Device {
	slog.Debug("new device", "name", name, "threads", envconfig.Threads())

	return &Device{
		alloc:  NewAllocator(),
		stream: NewStream(name),
	}
}

func (d *Device) Allocator() *Allocator { return d.alloc }
func (d *Device) Stream() *Stream       { return d.stream }

func (d *Device) Close() error {
	return d.stream.Close()
}
