// Package viewer3d runs the optional STEP model comparison that accompanies
// a PDF redline.
//
// The viewer is an external program (by default a diff3d wrapper) that
// opens both models, saves a screenshot into its working directory, and
// exits when the window closes. Runner locks the save directory with flock,
// clears a stale screenshot, launches the viewer there, and renames the
// capture to sit next to the redline. A failed viewer leaves its stderr in an
// error log in the same directory.
package viewer3d
