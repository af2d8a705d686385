package peak

// adjacency is the largest gap, in samples, between one peak's right limit and
// the next peak's left limit for the two to share a baseline.
const adjacency = 2

// AssignClaims derives baseline claim limits for peaks sorted by apex.
//
// Walking left to right, a peak whose left limit lies within two samples of the
// previous peak's right limit joins that peak's baseline: it inherits
// BaselineLeft and the previous peak's Right is moved onto its Left. The same
// links are then walked right to left to propagate BaselineRight, so every
// group of touching peaks ends up with one common baseline segment.
func AssignClaims(peaks []Peak) {
	for i := range peaks {
		peaks[i].BaselineLeft = peaks[i].Left
		peaks[i].BaselineRight = peaks[i].Right
	}

	shared := make([]bool, len(peaks))
	for i := 1; i < len(peaks); i++ {
		prev, cur := &peaks[i-1], &peaks[i]
		if prev.Right+adjacency < cur.Left {
			continue
		}
		shared[i-1] = true
		cur.BaselineLeft = prev.BaselineLeft
		prev.Right = cur.Left
	}

	for i := len(peaks) - 2; i >= 0; i-- {
		if shared[i] {
			peaks[i].BaselineRight = peaks[i+1].BaselineRight
		}
	}
}

// Groups returns [first, last] index pairs of consecutive peaks sharing one
// baseline segment, in ascending order.
func Groups(peaks []Peak) [][2]int {
	var out [][2]int
	for i := 0; i < len(peaks); {
		j := i
		for j+1 < len(peaks) && peaks[j+1].BaselineLeft == peaks[i].BaselineLeft {
			j++
		}
		out = append(out, [2]int{i, j})
		i = j + 1
	}
	return out
}
