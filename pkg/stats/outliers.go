package stats

// IQRBounds returns the Tukey fences Q1 - 1.5*IQR and Q3 + 1.5*IQR for the
// slice.
func IQRBounds(x []float64) (low, high float64) {
	q1 := Quantile(x, 0.25)
	q3 := Quantile(x, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// Clip Winsorizes the slice into [low, high] and returns a new slice. Values
// inside the bounds are unchanged, so applying Clip twice with the same
// bounds equals applying it once.
func Clip(x []float64, low, high float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < low:
			out[i] = low
		case v > high:
			out[i] = high
		default:
			out[i] = v
		}
	}
	return out
}
