package wirecap

import (
	"log/slog"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/reassembly"
)

type StreamFactory interface {
	New() Stream
}

// Stream receives every complete wire frame observed on one TCP connection,
// both directions, in stream order.
type Stream interface {
	Frame(frame []byte)
}

// Assembler reassembles captured TCP segments back into wire frames. Thin
// wrapper over gopacket/reassembly so callers only deal in frames.
type Assembler struct {
	pool      *reassembly.StreamPool
	assembler *reassembly.Assembler
}

func NewAssembler(factory StreamFactory) *Assembler {
	p := reassembly.NewStreamPool(&factoryWrapper{wrap: factory})
	a := reassembly.NewAssembler(p)
	return &Assembler{pool: p, assembler: a}
}

type assemblyContext struct {
	CaptureInfo gopacket.CaptureInfo
}

func (c *assemblyContext) GetCaptureInfo() gopacket.CaptureInfo {
	return c.CaptureInfo
}

func (a *Assembler) Assemble(p gopacket.Packet) {
	tcp := p.Layer(layers.LayerTypeTCP)
	if tcp == nil {
		return
	}

	c := assemblyContext{CaptureInfo: p.Metadata().CaptureInfo}
	a.assembler.AssembleWithContext(p.NetworkLayer().NetworkFlow(), tcp.(*layers.TCP), &c)
}

func (a *Assembler) FlushOlderThan(t time.Time) {
	a.assembler.FlushCloseOlderThan(t)
}

type factoryWrapper struct {
	wrap StreamFactory
}

func (f *factoryWrapper) New(netFlow, tcpFlow gopacket.Flow, tcp *layers.TCP, ac reassembly.AssemblerContext) reassembly.Stream {
	return &streamWrapper{wrap: f.wrap.New()}
}

// streamWrapper keeps one frame buffer per direction; queries and replies
// interleave on the wire but each direction's byte stream frames cleanly.
type streamWrapper struct {
	wrap     Stream
	toServer frameBuffer
	toClient frameBuffer
}

func (s *streamWrapper) Accept(tcp *layers.TCP, ci gopacket.CaptureInfo, dir reassembly.TCPFlowDirection, nextSeq reassembly.Sequence, start *bool, ac reassembly.AssemblerContext) bool {
	return true
}

func (s *streamWrapper) ReassembledSG(sg reassembly.ScatterGather, ac reassembly.AssemblerContext) {
	l, _ := sg.Lengths()
	if l == 0 {
		return
	}

	dir, _, _, _ := sg.Info()
	buf := &s.toServer
	if dir == reassembly.TCPDirServerToClient {
		buf = &s.toClient
	}

	buf.feed(sg.Fetch(l))
	for {
		frame, err := buf.next()
		if err != nil {
			slog.Debug("dropping desynchronized stream buffer", "dir", dir, "err", err)
			return
		}
		if frame == nil {
			return
		}
		s.wrap.Frame(frame)
	}
}

func (s *streamWrapper) ReassemblyComplete(ac reassembly.AssemblerContext) bool {
	return true
}
