// Package vm implements the Transient virtual machine: a flat
// byte-addressable memory, a fetch/decode/execute loop over the 8-byte
// instruction encoding from package isa, and the arithmetic, control-flow
// and I/O semantics of spec.md §4.2.
package vm

// TransientMemMax is the maximum addressable memory size in bytes
// (spec.md §6.3, §9 "Image capacity" — fixed at the upper end of the
// reference's two historical values).
const TransientMemMax = 65535
