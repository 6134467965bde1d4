// Package preflight provides readiness checks for the external tools and
// filesystem paths drawdiff depends on.
//
// The CLI "drawdiff status" command renders RunAll and CheckSystemDeps, and
// "drawdiff compare" consults CheckViewer indirectly through the 3D runner's
// probe. Disabled features are skipped.
package preflight
