// Package wait estimates queue wait times and rates candidate hours
// with a small Mamdani-style fuzzy system: triangular memberships,
// min-AND rule activation and centroid defuzzification.
package wait

import "math"

type trimf struct{ a, b, c float64 }

func (t trimf) at(x float64) float64 {
	switch {
	case x <= t.a, x >= t.c:
		if x == t.a && t.a == t.b {
			return 1
		}
		if x == t.c && t.b == t.c {
			return 1
		}
		return 0
	case x < t.b:
		return (x - t.a) / (t.b - t.a)
	case x == t.b:
		return 1
	default:
		return (t.c - x) / (t.c - t.b)
	}
}

// Input memberships.
var (
	occLow  = trimf{0, 0, 35}
	occMid  = trimf{25, 50, 75}
	occHigh = trimf{65, 100, 100}

	urgLow  = trimf{0, 0, 3}
	urgMid  = trimf{2, 5, 8}
	urgHigh = trimf{7, 10, 10}

	hourEarly   = trimf{7, 7, 9}
	hourMorning = trimf{8, 10, 12}
	hourMidday  = trimf{11, 13, 15}
	hourLate    = trimf{14, 16, 17}
)

// Wait output sets, minutes.
var (
	waitVeryShort = trimf{0, 0, 15}
	waitShort     = trimf{10, 25, 40}
	waitMedium    = trimf{35, 50, 65}
	waitLong      = trimf{60, 80, 100}
	waitVeryLong  = trimf{95, 120, 120}
)

// Recommendation output sets, score 0-100.
var (
	recVeryLow = trimf{0, 0, 20}
	recLow     = trimf{15, 35, 55}
	recMedium  = trimf{45, 65, 85}
	recHigh    = trimf{75, 100, 100}
)

type rule struct {
	degree float64
	out    trimf
}

func and(a, b float64) float64 { return math.Min(a, b) }

func clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }

// centroid defuzzifies the aggregated rule outputs over [lo,hi].
func centroid(rules []rule, lo, hi float64) float64 {
	var num, den float64
	for x := lo; x <= hi; x++ {
		var mu float64
		for _, r := range rules {
			m := math.Min(r.degree, r.out.at(x))
			if m > mu {
				mu = m
			}
		}
		num += x * mu
		den += mu
	}
	if den == 0 {
		return (lo + hi) / 2
	}
	return num / den
}

// EstimateWait returns the expected wait in minutes for the given
// occupancy percentage (0-100), urgency level (0-10) and hour of day.
func EstimateWait(occupancy, urgency, hour float64) float64 {
	occupancy = clamp(occupancy, 0, 100)
	urgency = clamp(urgency, 0, 10)
	hour = clamp(hour, 7, 17)

	rules := []rule{
		{and(occLow.at(occupancy), urgHigh.at(urgency)), waitVeryShort},
		{and(occLow.at(occupancy), urgMid.at(urgency)), waitShort},
		{and(occLow.at(occupancy), urgLow.at(urgency)), waitShort},
		{and(occMid.at(occupancy), urgHigh.at(urgency)), waitShort},
		{and(occMid.at(occupancy), urgMid.at(urgency)), waitMedium},
		{and(occMid.at(occupancy), urgLow.at(urgency)), waitMedium},
		{and(occHigh.at(occupancy), urgHigh.at(urgency)), waitMedium},
		{and(occHigh.at(occupancy), urgMid.at(urgency)), waitLong},
		{and(occHigh.at(occupancy), urgLow.at(urgency)), waitVeryLong},
		{and(hourEarly.at(hour), occLow.at(occupancy)), waitVeryShort},
		{and(hourMidday.at(hour), occHigh.at(occupancy)), waitVeryLong},
		{and(hourLate.at(hour), occMid.at(occupancy)), waitShort},
		{and(hourMorning.at(hour), occMid.at(occupancy)), waitShort},
		{and(hourEarly.at(hour), urgHigh.at(urgency)), waitVeryShort},
		{and(hourMidday.at(hour), urgLow.at(urgency)), waitVeryLong},
	}
	return math.Round(centroid(rules, 0, 120)*10) / 10
}

// RecommendScore rates how advisable an hour is, 0-100. Lower
// occupancy and edge-of-day hours score higher.
func RecommendScore(occupancy, hour float64) float64 {
	occupancy = clamp(occupancy, 0, 100)
	hour = clamp(hour, 7, 17)

	rules := []rule{
		{and(occLow.at(occupancy), hourEarly.at(hour)), recHigh},
		{and(occLow.at(occupancy), hourLate.at(hour)), recHigh},
		{and(occMid.at(occupancy), hourMorning.at(hour)), recMedium},
		{and(occHigh.at(occupancy), hourMidday.at(hour)), recVeryLow},
		{occHigh.at(occupancy), recLow},
		{occLow.at(occupancy), recHigh},
		{hourEarly.at(hour), recHigh},
		{hourMidday.at(hour), recVeryLow},
	}
	return math.Round(centroid(rules, 0, 100)*10) / 10
}
