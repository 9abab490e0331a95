// Package field defines the opaque wire values exchanged across the
// circuit boundary.
//
// Fp is a base field element and FpExt a degree-4 extension element. The
// bridge never interprets their bits: this package only moves values
// between Go slices and their fixed-width little-endian wire form. All
// arithmetic lives in the circuit core.
package field
