package field

import (
	"encoding/binary"
)

// ExtDegree is the degree of the field extension.
const ExtDegree = 4

// Wire sizes in bytes.
const (
	FpBytes    = 4
	FpExtBytes = FpBytes * ExtDegree
)

// Fp is an opaque base field element in its raw wire representation.
// The zero value is the canonical "safe" default returned by failed
// boundary calls.
type Fp struct {
	raw uint32
}

// FromRaw wraps a raw wire value.
func FromRaw(raw uint32) Fp {
	return Fp{raw: raw}
}

// Raw returns the raw wire value.
func (e Fp) Raw() uint32 {
	return e.raw
}

// FpExt is an opaque extension field element.
type FpExt struct {
	elems [ExtDegree]Fp
}

// ExtFromRaw wraps raw wire values, one per extension coefficient.
func ExtFromRaw(raw [ExtDegree]uint32) FpExt {
	var e FpExt
	for i, r := range raw {
		e.elems[i] = Fp{raw: r}
	}
	return e
}

// Raw returns the raw wire values, one per extension coefficient.
func (e FpExt) Raw() [ExtDegree]uint32 {
	var raw [ExtDegree]uint32
	for i, el := range e.elems {
		raw[i] = el.raw
	}
	return raw
}

// PutBytes writes the little-endian wire form into b, which must be at
// least FpExtBytes long.
func (e FpExt) PutBytes(b []byte) {
	for i, el := range e.elems {
		binary.LittleEndian.PutUint32(b[i*FpBytes:], el.raw)
	}
}

// ExtFromBytes reads an extension element from its little-endian wire
// form. b must be at least FpExtBytes long.
func ExtFromBytes(b []byte) FpExt {
	var e FpExt
	for i := range e.elems {
		e.elems[i].raw = binary.LittleEndian.Uint32(b[i*FpBytes:])
	}
	return e
}

// EncodeSlice writes src into dst in little-endian wire form.
// dst must be at least len(src)*FpBytes long.
func EncodeSlice(dst []byte, src []Fp) {
	for i, el := range src {
		binary.LittleEndian.PutUint32(dst[i*FpBytes:], el.raw)
	}
}

// DecodeSlice fills dst from its little-endian wire form.
// src must be at least len(dst)*FpBytes long.
func DecodeSlice(dst []Fp, src []byte) {
	for i := range dst {
		dst[i].raw = binary.LittleEndian.Uint32(src[i*FpBytes:])
	}
}
