package shader

import "github.com/chewxy/math32"

// Random is the CPU counterpart of the random() helper emitted into noise
// shaders. GPUs evaluate sin at varying precision, so results agree only
// approximately with what a given driver computes.
func Random(v [3]float32) float32 {
	r := math32.Sin(v[0])*12.9898 + math32.Sin(v[1])*78.233 + math32.Sin(v[2])*37.719
	x := math32.Sin(r) * 143758.5453
	return x - math32.Floor(x)
}

// DitherMask returns the 0 or 1 alpha multiplier a noise shader applies at
// window coordinate (x, y). Coordinates are quantized to a 240 line grid
// scaled to height. A non-positive height yields 1.
func DitherMask(x, y float32, frame uint32, height int) float32 {
	if height <= 0 {
		return 1
	}
	scale := 240 / float32(height)
	v := [3]float32{math32.Floor(x * scale), math32.Floor(y * scale), float32(frame)}
	return math32.Floor(Random(v) + 0.5)
}
