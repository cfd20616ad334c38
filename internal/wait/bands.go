package wait

import "sort"

// Band is a stretch of the service day used for recommendations.
type Band struct {
	Name   string
	Window string
	Hours  []float64
}

var Bands = []Band{
	{Name: "temprano", Window: "07:00-09:00", Hours: []float64{7, 8, 9}},
	{Name: "mañana", Window: "09:00-12:00", Hours: []float64{9.5, 10, 11, 11.5}},
	{Name: "mediodía", Window: "12:00-14:00", Hours: []float64{12, 13, 14}},
	{Name: "tarde", Window: "14:00-15:00", Hours: []float64{14.5, 15}},
}

// BandScore is a band with its averaged recommendation score.
type BandScore struct {
	Band
	Score float64
}

// ScoreBands rates every band given per-hour occupancy and returns
// them best first.
func ScoreBands(occupancyAt func(hour float64) float64) []BandScore {
	out := make([]BandScore, 0, len(Bands))
	for _, b := range Bands {
		var sum float64
		for _, h := range b.Hours {
			sum += RecommendScore(occupancyAt(h), h)
		}
		out = append(out, BandScore{Band: b, Score: sum / float64(len(b.Hours))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
