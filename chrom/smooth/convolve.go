package smooth

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Kernels at or above this length are applied with FFT overlap-add.
const fftThreshold = 64

// convolveSame convolves signal with kernel and returns the centered part of the
// full convolution, with the same length as signal.
func convolveSame(signal, kernel []float64) ([]float64, error) {
	rev := make([]float64, len(kernel))
	for i, v := range kernel {
		rev[len(kernel)-1-i] = v
	}

	var (
		full []float64
		err  error
	)
	if len(kernel) < fftThreshold {
		full = direct(signal, rev)
	} else {
		full, err = overlapAdd(signal, rev)
		if err != nil {
			return nil, err
		}
	}

	start := (len(kernel) - 1) / 2
	out := make([]float64, len(signal))
	copy(out, full[start:start+len(signal)])

	return out, nil
}

// direct performs O(N*M) time-domain linear convolution.
func direct(a, b []float64) []float64 {
	dst := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			dst[i+j] += a[i] * b[j]
		}
	}
	return dst
}

// overlapAdd performs FFT block convolution. Blocks are at least as long as the
// kernel so each FFT stays within a small multiple of the kernel length.
func overlapAdd(input, kernel []float64) ([]float64, error) {
	kernelLen := len(kernel)

	blockSize := nextPowerOf2(kernelLen)
	if blockSize < 256 {
		blockSize = 256
	}
	fftSize := nextPowerOf2(blockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}

	kernelFFT := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelFFT[i] = complex(v, 0)
	}
	if err := plan.Forward(kernelFFT, kernelFFT); err != nil {
		return nil, fmt.Errorf("smooth: kernel FFT failed: %w", err)
	}

	outputLen := len(input) + kernelLen - 1
	output := make([]float64, outputLen)
	block := make([]complex128, fftSize)

	for start := 0; start < len(input); start += blockSize {
		end := min(start+blockSize, len(input))

		for i := range block {
			block[i] = 0
		}
		for i := start; i < end; i++ {
			block[i-start] = complex(input[i], 0)
		}

		if err := plan.Forward(block, block); err != nil {
			return nil, fmt.Errorf("smooth: forward FFT failed: %w", err)
		}
		for i := range block {
			block[i] *= kernelFFT[i]
		}
		if err := plan.Inverse(block, block); err != nil {
			return nil, fmt.Errorf("smooth: inverse FFT failed: %w", err)
		}

		resultLen := end - start + kernelLen - 1
		for i := 0; i < resultLen && start+i < outputLen; i++ {
			output[start+i] += real(block[i])
		}
	}

	return output, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
