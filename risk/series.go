// risk/series.go
package risk

import (
	"fmt"
	"math"
	"time"

	"quant_risk_go/data"

	"gonum.org/v1/gonum/stat"
)

// ReturnMethod selects how periodic returns are derived from closes.
type ReturnMethod string

const (
	SimpleReturns ReturnMethod = "simple"
	LogReturns    ReturnMethod = "log"
)

// ReturnSeries is a date-aligned series of periodic returns. Its length is
// always one less than the price series it came from: the first bar has no
// prior close to compare against.
type ReturnSeries struct {
	Dates  []time.Time
	Values []float64
}

func (r ReturnSeries) Len() int { return len(r.Values) }

// Mean is the arithmetic mean; NaN for an empty series.
func (r ReturnSeries) Mean() float64 { return stat.Mean(r.Values, nil) }

// Std is the sample standard deviation (n-1 divisor); NaN below two
// observations.
func (r ReturnSeries) Std() float64 { return stat.StdDev(r.Values, nil) }

// Returns derives the return series from a bar series using the given
// method. An unknown method is an invalid argument, never a silent default.
func Returns(bars []data.PriceBar, method ReturnMethod) (ReturnSeries, error) {
	switch method {
	case SimpleReturns, LogReturns:
	default:
		return ReturnSeries{}, fmt.Errorf("unsupported return calculation method: %q", method)
	}

	if len(bars) < 2 {
		return ReturnSeries{}, nil
	}

	out := ReturnSeries{
		Dates:  make([]time.Time, 0, len(bars)-1),
		Values: make([]float64, 0, len(bars)-1),
	}
	for i := 1; i < len(bars); i++ {
		var v float64
		if method == SimpleReturns {
			v = bars[i].Close/bars[i-1].Close - 1
		} else {
			v = math.Log(bars[i].Close / bars[i-1].Close)
		}
		out.Dates = append(out.Dates, bars[i].Date)
		out.Values = append(out.Values, v)
	}
	return out, nil
}

// alignSeries inner-joins two return series on date, preserving a's order.
func alignSeries(a, b ReturnSeries) (ReturnSeries, ReturnSeries) {
	byDate := make(map[int64]float64, b.Len())
	for i, d := range b.Dates {
		byDate[d.Unix()] = b.Values[i]
	}

	var outA, outB ReturnSeries
	for i, d := range a.Dates {
		if v, ok := byDate[d.Unix()]; ok {
			outA.Dates = append(outA.Dates, d)
			outA.Values = append(outA.Values, a.Values[i])
			outB.Dates = append(outB.Dates, d)
			outB.Values = append(outB.Values, v)
		}
	}
	return outA, outB
}
