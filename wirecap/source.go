package wirecap

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

type PacketSource interface {
	Packets() chan gopacket.Packet
}

var _ PacketSource = (*gopacket.PacketSource)(nil)

// NewSourceLive captures from a network device, filtered to the store's port.
func NewSourceLive(device string, port int) (PacketSource, error) {
	handle, err := pcap.OpenLive(device, 65535, true, pcap.BlockForever)
	if err != nil {
		return nil, err
	}
	if err = handle.SetBPFFilter(fmt.Sprintf("tcp and port %d", port)); err != nil {
		return nil, err
	}
	return gopacket.NewPacketSource(handle, handle.LinkType()), nil
}

// NewSourceFile replays a pcap dump, filtered the same way.
func NewSourceFile(path string, port int) (PacketSource, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, err
	}
	if err = handle.SetBPFFilter(fmt.Sprintf("tcp and port %d", port)); err != nil {
		return nil, err
	}
	return gopacket.NewPacketSource(handle, handle.LinkType()), nil
}
