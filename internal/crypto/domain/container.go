package domain

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// This container format carries no magic bytes and no version field.
// Decoding a foreign blob fails as a generic parse error
// rather than a recognizable "wrong format" signal. See DESIGN.md for why
// this was left out of the baseline.

// Metadata carries non-secret, caller-supplied context alongside a
// container: where it came from, what kind of secret it holds, and when it
// was sealed. None of it is authenticated by the AEAD tag unless the
// orchestrator explicitly binds it as AAD.
type Metadata struct {
	SecretType SecretType `json:"secret_type"`
	Source     string     `json:"source,omitempty"`
	CreatedAt  int64      `json:"created_at"`
}

// EncryptedSecret is the serializable, at-rest form of an encrypted secret:
// everything needed to reverse the encryption given the correct password,
// and nothing that reveals the plaintext.
type EncryptedSecret struct {
	Algorithm Algorithm
	Params    KDFParams
	Salt      []byte
	Nonce     []byte
	AAD       []byte
	Ciphertext []byte
	Metadata  Metadata
}

// jsonContainer is the base64-field wire shape for EncryptedSecret.MarshalJSON.
type jsonContainer struct {
	Algorithm    Algorithm `json:"algorithm"`
	MemoryKiB    uint32    `json:"kdf_memory_kib"`
	Time         uint32    `json:"kdf_time"`
	Parallelism  uint8     `json:"kdf_parallelism"`
	OutputLength uint32    `json:"kdf_output_length"`
	Salt         string    `json:"salt"`
	Nonce        string    `json:"nonce"`
	AAD          string    `json:"aad,omitempty"`
	Ciphertext   string    `json:"ciphertext"`
	Metadata     Metadata  `json:"metadata"`
}

// MarshalJSON encodes the container in the base64-field JSON wire format.
func (e EncryptedSecret) MarshalJSON() ([]byte, error) {
	jc := jsonContainer{
		Algorithm:    e.Algorithm,
		MemoryKiB:    e.Params.MemoryKiB,
		Time:         e.Params.Time,
		Parallelism:  e.Params.Parallelism,
		OutputLength: e.Params.OutputLength,
		Salt:         base64.StdEncoding.EncodeToString(e.Salt),
		Nonce:        base64.StdEncoding.EncodeToString(e.Nonce),
		Ciphertext:   base64.StdEncoding.EncodeToString(e.Ciphertext),
		Metadata:     e.Metadata,
	}
	if len(e.AAD) > 0 {
		jc.AAD = base64.StdEncoding.EncodeToString(e.AAD)
	}
	data, err := json.Marshal(jc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// UnmarshalJSON decodes the base64-field JSON wire format produced by MarshalJSON.
func (e *EncryptedSecret) UnmarshalJSON(data []byte) error {
	var jc jsonContainer
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	salt, err := base64.StdEncoding.DecodeString(jc.Salt)
	if err != nil {
		return fmt.Errorf("%w: bad salt encoding: %v", ErrSerialization, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(jc.Nonce)
	if err != nil {
		return fmt.Errorf("%w: bad nonce encoding: %v", ErrSerialization, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(jc.Ciphertext)
	if err != nil {
		return fmt.Errorf("%w: bad ciphertext encoding: %v", ErrSerialization, err)
	}
	var aad []byte
	if jc.AAD != "" {
		aad, err = base64.StdEncoding.DecodeString(jc.AAD)
		if err != nil {
			return fmt.Errorf("%w: bad aad encoding: %v", ErrSerialization, err)
		}
	}

	e.Algorithm = jc.Algorithm
	e.Params = KDFParams{
		MemoryKiB:    jc.MemoryKiB,
		Time:         jc.Time,
		Parallelism:  jc.Parallelism,
		OutputLength: jc.OutputLength,
	}
	e.Salt = salt
	e.Nonce = nonce
	e.AAD = aad
	e.Ciphertext = ciphertext
	e.Metadata = jc.Metadata
	return nil
}

// MarshalBinary encodes the container as a sequence of uint32-length-prefixed
// fields, in the same field order as jsonContainer, followed by the
// length-prefixed JSON-encoded Metadata. This is the format written to
// ".enc" files; it is more compact than the JSON form and avoids a second
// base64 expansion on top of an already-compact binary blob.
func (e EncryptedSecret) MarshalBinary() ([]byte, error) {
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrSerialization, err)
	}

	buf := make([]byte, 0, 64+len(e.Salt)+len(e.Nonce)+len(e.AAD)+len(e.Ciphertext)+len(metaJSON))

	algo := []byte(e.Algorithm)
	buf = appendLV(buf, algo)
	buf = appendUint32(buf, e.Params.MemoryKiB)
	buf = appendUint32(buf, e.Params.Time)
	buf = append(buf, byte(e.Params.Parallelism))
	buf = appendUint32(buf, e.Params.OutputLength)
	buf = appendLV(buf, e.Salt)
	buf = appendLV(buf, e.Nonce)
	buf = appendLV(buf, e.AAD)
	buf = appendLV(buf, e.Ciphertext)
	buf = appendLV(buf, metaJSON)

	return buf, nil
}

// UnmarshalBinary decodes the field layout produced by MarshalBinary.
func (e *EncryptedSecret) UnmarshalBinary(data []byte) error {
	r := &byteReader{buf: data}

	algo, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: algorithm: %v", ErrSerialization, err)
	}
	mem, err := r.u32()
	if err != nil {
		return fmt.Errorf("%w: memory: %v", ErrSerialization, err)
	}
	t, err := r.u32()
	if err != nil {
		return fmt.Errorf("%w: time: %v", ErrSerialization, err)
	}
	par, err := r.u8()
	if err != nil {
		return fmt.Errorf("%w: parallelism: %v", ErrSerialization, err)
	}
	outLen, err := r.u32()
	if err != nil {
		return fmt.Errorf("%w: output length: %v", ErrSerialization, err)
	}
	salt, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrSerialization, err)
	}
	nonce, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: nonce: %v", ErrSerialization, err)
	}
	aad, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: aad: %v", ErrSerialization, err)
	}
	ciphertext, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: ciphertext: %v", ErrSerialization, err)
	}
	metaJSON, err := r.lv()
	if err != nil {
		return fmt.Errorf("%w: metadata: %v", ErrSerialization, err)
	}
	if !r.done() {
		return fmt.Errorf("%w: trailing bytes", ErrSerialization)
	}

	var meta Metadata
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return fmt.Errorf("%w: metadata decode: %v", ErrSerialization, err)
	}

	e.Algorithm = Algorithm(algo)
	e.Params = KDFParams{MemoryKiB: mem, Time: t, Parallelism: par, OutputLength: outLen}
	e.Salt = salt
	e.Nonce = nonce
	e.AAD = aad
	e.Ciphertext = ciphertext
	e.Metadata = meta
	return nil
}

func appendLV(buf, field []byte) []byte {
	buf = appendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// byteReader sequentially consumes length-prefixed fields from a binary
// container buffer.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) u32() (uint32, error) {
	if len(r.buf)-r.pos < 4 {
		return 0, fmt.Errorf("truncated uint32")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) u8() (uint8, error) {
	if len(r.buf)-r.pos < 1 {
		return 0, fmt.Errorf("truncated uint8")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) lv() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint32(len(r.buf)-r.pos) < n {
		return nil, fmt.Errorf("truncated field of length %d", n)
	}
	v := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, v)
	return out, nil
}

func (r *byteReader) done() bool {
	return r.pos == len(r.buf)
}
