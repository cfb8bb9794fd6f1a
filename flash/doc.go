// Package flash stores key-value data in the unused tail of an
// execute-in-place NOR flash.
//
// The package exposes a Controller that a log-structured storage engine uses
// as its block device. The engine thinks in regions, fixed-size erasable
// sectors numbered from zero. The Controller maps those regions onto the last
// StorageSize bytes of flash and performs the three primitives the engine
// needs.
//
//   - ReadRegion copies bytes out of the memory-mapped (XIP) view of flash.
//     It is an ordinary memory copy.
//   - Write programs bytes through the flash command interface.
//   - EraseRegion erases one sector through the flash command interface.
//
// Write and EraseRegion take the flash out of memory-mapped mode. While it is
// out, nothing may fetch instructions or data from flash. The Controller
// therefore runs the whole command sequence inside a CriticalSection (no
// interrupts, no other core) and through an Executor whose routines live in
// RAM. The Builder refuses an Executor that would run them from flash.
//
// Two address spaces are involved. Command addresses start at zero at the
// beginning of the flash chip. Memory-mapped addresses start at XIPBase.
//
//	command view:  0x0000_0000 ........ BaseAddr [ storage window ] FlashEnd
//	XIP view:      0x1000_0000 ..... XIPBaseAddr [ storage window ]
//
// Hardware failures during program or erase are not detected. The ROM
// routines behind Driver do not report them, so Write and EraseRegion return
// nil once the command sequence has run. Engines must detect corrupted
// records themselves.
package flash
