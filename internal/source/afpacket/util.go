package afpacket

import (
	"fmt"
)

const (
	tpacketAlignment = 16 // TPACKET_ALIGNMENT
	tpacketHdrLen    = 52 // TPACKET3_HDRLEN, approximate
	maxBlockSize     = 4 * 1024 * 1024
)

// recomputeSize picks ring geometry for TPACKET_V3 within ringBufferSizeMB.
//
// The kernel (and gopacket's option checks) require that frameSize is a
// multiple of TPACKET_ALIGNMENT, blockSize a multiple of pageSize, and
// blockSize a multiple of frameSize. A frame no larger than a page is rounded
// up to a power of two so it divides the page; a larger frame is rounded up to
// whole pages.
func recomputeSize(ringBufferSizeMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	if ringBufferSizeMB <= 0 {
		return 0, 0, 0, fmt.Errorf("ringBufferSizeMB must be positive, got %d", ringBufferSizeMB)
	}
	if snapLen <= 0 {
		return 0, 0, 0, fmt.Errorf("snapLen must be positive, got %d", snapLen)
	}
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 || pageSize%tpacketAlignment != 0 {
		return 0, 0, 0, fmt.Errorf("pageSize must be a power of two and multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	raw := tpacketHdrLen + snapLen
	if raw <= pageSize {
		frameSize = tpacketAlignment
		for frameSize < raw {
			frameSize <<= 1
		}
	} else {
		frameSize = ((raw + pageSize - 1) / pageSize) * pageSize
	}

	// unit satisfies both divisibility rules; blocks are whole units capped
	// by maxBlockSize and by the ring budget.
	unit := max(frameSize, pageSize)
	targetBytes := ringBufferSizeMB * 1024 * 1024
	perBlock := max(1, min(maxBlockSize, targetBytes)/unit)
	blockSize = unit * perBlock

	numBlocks = targetBytes / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}

	return frameSize, blockSize, numBlocks, nil
}
