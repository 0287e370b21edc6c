package diag

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"

	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/hardware/rtc/sim"
)

const plotWidth = 640
const plotHeight = 360
const traceHeight = 240
const plotMargin = 40

// WritePlot draws the counter samples of both timed phases as a PNG: tick
// samples in blue, alarm samples in red, one column per sample.  If trace
// is not empty a second panel underneath shows the simulator's counter
// against rtc cycles, with a mark wherever a flag was latched.
func WritePlot(w io.Writer, res *Result, trace []sim.Event) error {
	height := plotHeight
	if len(trace) > 0 {
		height += traceHeight
	}
	dc := gg.NewContext(plotWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	drawSamples(dc, res)
	if len(trace) > 0 {
		drawTrace(dc, trace, plotHeight)
	}
	return dc.EncodePNG(w)
}

func drawSamples(dc *gg.Context, res *Result) {
	n := len(res.IncrementSamples) + len(res.AlarmSamples)
	maxCount := uint32(1)
	for _, s := range append(append([]uint32{}, res.IncrementSamples...), res.AlarmSamples...) {
		if s > maxCount {
			maxCount = s
		}
	}
	x0, y0 := float64(plotMargin), float64(plotHeight-plotMargin)
	xSpan := float64(plotWidth - 2*plotMargin)
	ySpan := float64(plotHeight - 2*plotMargin)
	col := func(i int) float64 {
		if n <= 1 {
			return x0
		}
		return x0 + xSpan*float64(i)/float64(n-1)
	}
	row := func(v uint32) float64 {
		return y0 - ySpan*float64(v)/float64(maxCount)
	}

	drawAxes(dc, x0, y0, xSpan, ySpan, "0", fmt.Sprintf("%d", maxCount))

	plotSeries := func(first int, samples []uint32) {
		for i, s := range samples {
			x, y := col(first+i), row(s)
			if i > 0 {
				dc.DrawLine(col(first+i-1), row(samples[i-1]), x, y)
				dc.Stroke()
			}
			dc.DrawCircle(x, y, 4)
			dc.Fill()
		}
	}
	dc.SetRGB(0.1, 0.3, 0.9)
	plotSeries(0, res.IncrementSamples)
	dc.SetRGB(0.9, 0.1, 0.1)
	plotSeries(len(res.IncrementSamples), res.AlarmSamples)

	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("cnt inc (%d)  alrm (%d)  mismatches %d",
		len(res.IncrementSamples), len(res.AlarmSamples), res.Mismatches),
		x0, float64(plotMargin)/2)
}

// drawTrace puts the counter steps in a panel starting at top.  The x axis
// is rtc cycles relative to the first event.
func drawTrace(dc *gg.Context, trace []sim.Event, top int) {
	first, last := trace[0].Cycle, trace[len(trace)-1].Cycle
	lo, hi := trace[0].Counter, trace[0].Counter
	for _, e := range trace {
		if e.Counter < lo {
			lo = e.Counter
		}
		if e.Counter > hi {
			hi = e.Counter
		}
	}
	x0, y0 := float64(plotMargin), float64(top+traceHeight-plotMargin)
	xSpan := float64(plotWidth - 2*plotMargin)
	ySpan := float64(traceHeight - 2*plotMargin)
	col := func(c uint64) float64 {
		if last == first {
			return x0
		}
		return x0 + xSpan*float64(c-first)/float64(last-first)
	}
	row := func(v uint32) float64 {
		if hi == lo {
			return y0 - ySpan/2
		}
		return y0 - ySpan*float64(v-lo)/float64(hi-lo)
	}

	drawAxes(dc, x0, y0, xSpan, ySpan, fmt.Sprintf("%d", lo), fmt.Sprintf("%d", hi))
	dc.DrawString(fmt.Sprintf("%d cycles", last-first), x0+xSpan-80, y0+16)

	dc.SetRGB(0.3, 0.3, 0.3)
	for i := 1; i < len(trace); i++ {
		prev, e := trace[i-1], trace[i]
		dc.DrawLine(col(prev.Cycle), row(prev.Counter), col(e.Cycle), row(prev.Counter))
		dc.DrawLine(col(e.Cycle), row(prev.Counter), col(e.Cycle), row(e.Counter))
	}
	dc.Stroke()
	for _, e := range trace {
		x, y := col(e.Cycle), row(e.Counter)
		if e.Status&rtc.StatusIncrement != 0 {
			dc.SetRGB(0.1, 0.3, 0.9)
			dc.DrawCircle(x, y, 3)
			dc.Fill()
		}
		if e.Status&rtc.StatusAlarm != 0 {
			dc.SetRGB(0.9, 0.1, 0.1)
			dc.DrawCircle(x, y, 6)
			dc.Stroke()
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("sim trace (%d steps)  inc flag  alrm flag", len(trace)),
		x0, float64(top)+float64(plotMargin)/2)
}

func drawAxes(dc *gg.Context, x0, y0, xSpan, ySpan float64, bottom, top string) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(x0, y0, x0+xSpan, y0)
	dc.DrawLine(x0, y0, x0, y0-ySpan)
	dc.Stroke()
	dc.DrawString(top, 4, y0-ySpan+4)
	dc.DrawString(bottom, 4, y0+4)
}
