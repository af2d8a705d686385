// Package smooth reduces high-frequency detector noise before peak detection.
//
// The only filter provided is the Savitzky–Golay local-polynomial smoother: every
// sample is replaced by the value of a least-squares polynomial of order
// Order fitted over a centered window of Window samples. Interior samples are
// computed by convolution with the filter kernel; the first and last Window/2
// samples are taken from the polynomial fitted to the first and last full window.
//
// # Usage
//
//	cfg := smooth.Config{Window: 7, Order: 3}
//	smoothed, err := smooth.Filter(signal, cfg)
//
// A Window of 0 or 1 disables smoothing. Traces shorter than the window are
// smoothed with the longest odd window that fits.
package smooth
