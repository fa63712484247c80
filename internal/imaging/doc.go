// Package imaging provides the raster primitives the detection and animation
// engines are built on: image I/O, grayscale conversion, fixed and adaptive
// binarization, morphological dilate/erode, connected-component contour
// extraction with convex-hull solidity, and crop/resize/affine helpers backed
// by golang.org/x/image/draw.
//
// Everything in this package is a pure function of its inputs; no shared
// state, safe for concurrent use.
package imaging
