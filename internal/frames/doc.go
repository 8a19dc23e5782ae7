// Package frames sequences the kernel traversal of a padded grid into
// immutable Frame snapshots, one per output cell in row-major order.
//
// A Sequencer owns its KernelMask and output mask exclusively; frames carry
// deep copies of both, so a frame stays valid after the sequencer moves on
// and can be rendered independently or out of order.
package frames
