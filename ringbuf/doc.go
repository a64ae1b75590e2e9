// Package ringbuf provides the fixed-capacity circular buffer used as the
// receive buffer of the AT command runtime.
//
// [Ring] is a generic ring of elements with wraparound indices and lazy
// linearization: [Ring.Contiguous] rotates the backing array in place only
// when the logical content currently wraps past the physical end. The
// capacity is fixed at construction and no method allocates afterwards.
//
// [Line] is a byte-oriented view over a Ring that adds the vocabulary the
// protocol engine parses against: literal substring search, prefix test,
// bulk text append and token-driven consumption.
//
// Neither type is safe for concurrent use. A buffer is owned by exactly one
// engine or executor.
package ringbuf
