package domain

import "runtime"

// Zero securely overwrites a byte slice with zeros to clear sensitive data from memory.
//
// runtime.KeepAlive pins b past the loop so the compiler cannot prove the
// writes are dead and elide them ahead of the slice going out of scope.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
