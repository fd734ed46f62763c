package afpacket

import (
	"fmt"

	"golang.org/x/net/bpf"
)

// etherTypeOffset is the byte offset of the EtherType in an untagged Ethernet II frame.
const etherTypeOffset = 12

// ipv4OnlyFilter returns a classic BPF program accepting up to snapLen bytes
// of frames whose EtherType is IPv4 and rejecting everything else.
func ipv4OnlyFilter(snapLen int) ([]bpf.RawInstruction, error) {
	prog, err := bpf.Assemble([]bpf.Instruction{
		bpf.LoadAbsolute{Off: etherTypeOffset, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x0800, SkipFalse: 1},
		bpf.RetConstant{Val: uint32(snapLen)},
		bpf.RetConstant{Val: 0},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble BPF filter: %w", err)
	}
	return prog, nil
}
