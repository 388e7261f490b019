// Package viz renders the double pendulum in the terminal.
//
// The package implements a live viewer using the Bubble Tea framework:
//
//   - [Model]: ticks a [sim.Loop] and draws the pair, its trace and stats
//   - [Canvas]: Braille-based pixel canvas with per-cell pen colours
//   - [Scene]: projects pivot-relative positions onto the canvas
//   - [Recorder]: writes canvas frames to an animated GIF
//   - Theme selection with 6 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	C     - Clear the trace
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// G starts recording; pressing it again, or quitting, writes the GIF to
// the path given in [Options].
package viz
