package crypto

// Zero overwrites a byte slice in memory with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func zero32(x *[KeySize]byte) {
	for i := range x {
		x[i] = 0
	}
}
