// Package geometry resolves the sliding-window geometry of a single-channel
// 2-D convolution or transposed convolution.
//
// Responsibilities: validating a LayerConfig, computing the output size and
// the effective stride/padding the kernel actually traverses with, building
// the operand grid (identity for conv, zero-inserted for transposed conv),
// padding it, and tracking the kernel footprint as a KernelMask.
//
// A transposed convolution is visualised as the equivalent direct
// convolution: the input is dilated with stride-1 zeros between cells,
// padded with kernel-padding-1 rings, and traversed with stride 1.
//
// Resolve is the only fallible step. Everything downstream of a successful
// Resolve is total.
package geometry
