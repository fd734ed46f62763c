package pipeline

// ipv4ChecksumValid reports whether the one's-complement sum (RFC 1071) over
// the IPv4 header, checksum field included, is all ones.
func ipv4ChecksumValid(header []byte) bool {
	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		sum += uint32(header[i])<<8 | uint32(header[i+1])
	}
	if len(header)%2 == 1 {
		sum += uint32(header[len(header)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xFFFF + sum>>16
	}
	return uint16(sum) == 0xFFFF
}
