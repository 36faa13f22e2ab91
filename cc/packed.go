package cc

// Option is a feature bit carried in the upper byte of a packed formula id.
type Option uint32

const (
	OptAlpha       Option = 1 << 24
	OptFog         Option = 1 << 25
	OptTextureEdge Option = 1 << 26
	OptNoise       Option = 1 << 27
)

const (
	operandBits = 3
	operandMask = 1<<operandBits - 1
	channelBits = 4 * operandBits
	channelMask = 1<<channelBits - 1
)

// Encode packs a color and alpha formula plus options into a formula id.
// Terms are given in (a, b, c, d) order.
func Encode(color, alpha [4]Operand, opts Option) uint32 {
	var id uint32
	for i := 0; i < 4; i++ {
		id |= uint32(color[i]&operandMask) << (i * operandBits)
		id |= uint32(alpha[i]&operandMask) << (channelBits + i*operandBits)
	}
	return id | uint32(opts)
}

// Decode unpacks a formula id into its features.
func Decode(id uint32) Features {
	var f Features
	for i := 0; i < 4; i++ {
		f.Terms[ChannelColor][i] = Operand((id >> (i * operandBits)) & operandMask)
		f.Terms[ChannelAlpha][i] = Operand((id >> (channelBits + i*operandBits)) & operandMask)
	}
	f.Alpha = id&uint32(OptAlpha) != 0
	f.Fog = id&uint32(OptFog) != 0
	f.TextureEdge = id&uint32(OptTextureEdge) != 0
	f.Noise = id&uint32(OptNoise) != 0

	for ch := range f.Terms {
		for _, op := range f.Terms[ch] {
			if n := op.Input(); n > f.NumInputs {
				f.NumInputs = n
			}
			if st := op.Stage(); st >= 0 {
				f.UsedTextures[st] = true
			}
		}
		f.Shapes[ch] = shapeOf(f.Terms[ch])
	}
	f.ColorAlphaSame = id&channelMask == (id>>channelBits)&channelMask
	return f
}

// shapeOf picks the cheapest shape that evaluates (a-b)*c+d exactly.
func shapeOf(t [4]Operand) Shape {
	switch {
	case t[2] == OperandZero:
		return ShapeSingle
	case t[1] == OperandZero && t[3] == OperandZero:
		return ShapeMultiply
	case t[1] == t[3]:
		return ShapeMix
	}
	return ShapeFull
}

// Packed is the [Describer] for ids built with [Encode].
var Packed Describer = DescriberFunc(Decode)
