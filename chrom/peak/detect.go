package peak

import "sort"

// Detect returns the ascending indices of strict local maxima of signal whose
// prominence is at least minProminence.
//
// Prominence is the height of the apex above the higher of its two bases, where
// each base is the lowest sample between the apex and the nearest strictly higher
// sample (or the end of the signal) on that side.
//
// When minDistance > 1, apexes closer than minDistance samples to a higher apex
// are removed; equal heights favour the lower index. A signal without peaks
// yields an empty result.
func Detect(signal []float64, minProminence float64, minDistance int) []int {
	var apexes []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] > signal[i-1] && signal[i] > signal[i+1] && prominence(signal, i) >= minProminence {
			apexes = append(apexes, i)
		}
	}

	if minDistance > 1 && len(apexes) > 1 {
		apexes = filterDistance(signal, apexes, minDistance)
	}

	return apexes
}

// Prominences returns the prominence of every index in apexes.
func Prominences(signal []float64, apexes []int) []float64 {
	out := make([]float64, len(apexes))
	for i, a := range apexes {
		out[i] = prominence(signal, a)
	}
	return out
}

func prominence(signal []float64, apex int) float64 {
	top := signal[apex]

	leftMin := top
	for j := apex - 1; j >= 0 && signal[j] <= top; j-- {
		if signal[j] < leftMin {
			leftMin = signal[j]
		}
	}

	rightMin := top
	for j := apex + 1; j < len(signal) && signal[j] <= top; j++ {
		if signal[j] < rightMin {
			rightMin = signal[j]
		}
	}

	return top - max(leftMin, rightMin)
}

func filterDistance(signal []float64, apexes []int, minDistance int) []int {
	order := make([]int, len(apexes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return signal[apexes[order[a]]] > signal[apexes[order[b]]]
	})

	removed := make([]bool, len(apexes))
	for _, k := range order {
		if removed[k] {
			continue
		}
		for j := k - 1; j >= 0 && apexes[k]-apexes[j] < minDistance; j-- {
			removed[j] = true
		}
		for j := k + 1; j < len(apexes) && apexes[j]-apexes[k] < minDistance; j++ {
			removed[j] = true
		}
	}

	kept := make([]int, 0, len(apexes))
	for i, a := range apexes {
		if !removed[i] {
			kept = append(kept, a)
		}
	}
	return kept
}
