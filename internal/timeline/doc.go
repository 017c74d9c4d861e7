// Package timeline turns per-entity detection streams into pseudo-cues and
// appearance timelines.
//
// Cluster performs the first, spatially sensitive pass: consecutive events
// that stay close in time and position collapse into one PseudoCue. Merge
// then drops the spatial factor and joins pseudo-cues that are close in time
// into Timelines. Both passes are pure functions of their input.
package timeline
