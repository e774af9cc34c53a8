package strtab

// hashString computes the Lua 4.x string hash, folding each byte with a
// shift-xor-add step. Only the hash is returned; callers take the length
// from len(s).
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h ^ ((h << 5) + (h >> 2) + uint32(s[i]))
	}
	return h
}
