package peak

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chrom/chrom/quantity"
	"github.com/cwbudde/algo-chrom/chrom/trace"
)

// Integrate fills Area, Height and RetentionTime of every peak from the raw
// (unsmoothed) trace and the constructed baseline.
//
// The area is the left Riemann sum of raw minus baseline over [Left, Right),
// each sample weighted by its forward time step, clamped at zero. Uncertainties
// come from the trace resolutions: the area carries SignalSigma*sqrt(sum dt^2),
// the height SignalSigma and the retention time TimeSigma.
func Integrate(tr trace.Trace, baseline []float64, peaks []Peak) {
	dt := tr.Step()
	areaUnit := quantity.ProductUnit(tr.Unit, tr.TimeUnit)

	for i := range peaks {
		p := &peaks[i]
		n := p.Right - p.Left

		net := make([]float64, n)
		floats.SubTo(net, tr.Signal[p.Left:p.Right], baseline[p.Left:p.Right])
		vecmath.MulBlock(net, net, dt[p.Left:p.Right])

		area := math.Max(0, floats.Sum(net))
		steps := dt[p.Left:p.Right]
		sigma := tr.SignalSigma * math.Sqrt(floats.Dot(steps, steps))

		p.Area = quantity.New(area, sigma, areaUnit)
		p.Height = quantity.New(tr.Signal[p.Apex]-baseline[p.Apex], tr.SignalSigma, tr.Unit)
		p.RetentionTime = quantity.New(tr.Time[p.Apex], tr.TimeSigma, tr.TimeUnit)
	}
}
