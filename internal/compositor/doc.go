// Package compositor blends layers onto a fixed-size frame.
//
// Composite places a foreground through a grayscale mask so the mask value
// interpolates linearly between background and foreground. SoftMask builds
// the feathered masks used for character cutouts, and Preprocess turns a
// source background into the dimmed, blurred backdrop shared by every frame
// of a run. None of these functions mutate their inputs.
package compositor
