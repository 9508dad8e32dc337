package common

import "hash/fnv"

// GenerateIDFromName converts a function's linkage name into a stable numeric
// ID; used by callgraph nodes so they can be sorted/compared without relying
// on pointer identity (handy in tests and in diagnostic output).
func GenerateIDFromName(name string) uint {
	h := fnv.New32a()
	h.Write([]byte(name))
	return uint(h.Sum32())
}
