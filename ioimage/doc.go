// Package ioimage implements the PLC's in-memory I/O image: the fixed-size
// typed buffers for discrete/analog inputs and outputs, and the glue
// binding that is the sole externally visible handle to them.
//
// The shape of the image (which cells are present) is established once,
// when a compiled control program is bound, and is frozen for the
// lifetime of the process. Everything other than the scan engine's own
// program invocation must mutate cell contents only while holding the
// binding's buffer lock; the scan engine holds that lock for the full
// duration of a scan cycle, so no observer ever sees a torn scan.
package ioimage
