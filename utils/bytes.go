package utils

// Int16FromBytesLE combines a low byte followed by a high byte into a two's complement int16.
// The slice must hold at least two bytes.
func Int16FromBytesLE(bytes []byte) int16 {
	return int16(uint16(bytes[0]) | uint16(bytes[1])<<8)
}

// Int16sFromBytesLE decodes consecutive little-endian words. A trailing odd byte is ignored.
func Int16sFromBytesLE(bytes []byte) []int16 {
	words := make([]int16, len(bytes)/2)
	for i := range words {
		words[i] = Int16FromBytesLE(bytes[2*i : 2*i+2])
	}
	return words
}
