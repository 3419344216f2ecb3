package util

// ConvertBytesToKB converts bytes to kilobytes
func ConvertBytesToKB(bytes int64) int64 {
	return bytes / 1024
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// FitWithin scales (w, h) down to fit a bound x bound box, keeping the
// aspect ratio. Sizes already inside the box are returned unchanged.
func FitWithin(w, h, bound int) (int, int) {
	if w <= bound && h <= bound {
		return w, h
	}
	if w >= h {
		return bound, max(1, h*bound/w)
	}
	return max(1, w*bound/h), bound
}
