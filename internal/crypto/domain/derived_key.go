package domain

// DerivedKey is a symmetric key produced by the KDF, bound to the salt and
// parameters that produced it so containers remain self-describing.
type DerivedKey struct {
	Key    []byte
	Salt   []byte
	Params KDFParams
}

// Release zeroizes the key material. Salt is not secret and is left intact.
func (d *DerivedKey) Release() {
	Zero(d.Key)
}
