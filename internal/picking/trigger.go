package picking

import (
	"math"
)

// tiny keeps the classic long term average away from zero.
const tiny = 1e-30

// rmsFloor is added to the rolling long window RMS.
const rmsFloor = 1e-9

// Onset is a trigger onset at sample Index with trigger value Score.
type Onset struct {
	Index int
	Score float64
}

// Trigger finds up to max onsets in x using windows of nsta and nlta samples.
// An onset opens when the characteristic function rises above on.
type Trigger interface {
	Onsets(x []float64, nsta, nlta int, on, off float64, max int) []Onset
}

// ClassicSTALTA is the classic STA/LTA characteristic function over squared
// samples.  A trigger opens when the ratio exceeds on and closes once it falls
// to off or below; only one onset is reported per open trigger.
type ClassicSTALTA struct{}

// RollingRMS compares the RMS of a short window with the RMS of a long window
// ending on the same sample.  Every sample where the ratio exceeds on is an onset.
type RollingRMS struct{}

func (ClassicSTALTA) Onsets(x []float64, nsta, nlta int, on, off float64, max int) []Onset {
	onsets := []Onset{}

	if len(x) < nlta || max <= 0 {
		return onsets
	}

	cft := classic(x, nsta, nlta)

	var active bool

	for i, v := range cft {
		switch {
		case !active && v > on:
			active = true
			onsets = append(onsets, Onset{Index: i, Score: v})
			if len(onsets) == max {
				return onsets
			}
		case active && v <= off:
			active = false
		}
	}

	return onsets
}

// classic returns the STA/LTA ratio for each sample.  The first nlta-1
// values are zero as the long window is not yet full.
func classic(x []float64, nsta, nlta int) []float64 {
	n := len(x)

	cs := make([]float64, n)
	var sum float64
	for i, v := range x {
		sum += v * v
		cs[i] = sum
	}

	cft := make([]float64, n)

	for i := nlta - 1; i < n; i++ {
		sta := cs[i]
		if i >= nsta {
			sta -= cs[i-nsta]
		}
		sta /= float64(nsta)

		lta := cs[i]
		if i >= nlta {
			lta -= cs[i-nlta]
		}
		lta /= float64(nlta)

		if lta < tiny {
			lta = tiny
		}

		cft[i] = sta / lta
	}

	return cft
}

func (RollingRMS) Onsets(x []float64, nsta, nlta int, on, off float64, max int) []Onset {
	onsets := []Onset{}

	n := len(x)
	if n < nlta || n < nsta || max <= 0 {
		return onsets
	}

	sq := make([]float64, n+1)
	for i, v := range x {
		sq[i+1] = sq[i] + v*v
	}

	windowRMS := func(start, length int) float64 {
		return math.Sqrt(math.Max(0, sq[start+length]-sq[start]) / float64(length))
	}

	for i := 0; i+nlta <= n; i++ {
		end := i + nlta
		ratio := windowRMS(end-nsta, nsta) / (windowRMS(i, nlta) + rmsFloor)

		if ratio > on {
			onsets = append(onsets, Onset{Index: end - 1, Score: ratio})
			if len(onsets) == max {
				break
			}
		}
	}

	return onsets
}
