package qpy

// VersionRange fixes the inclusive QPY versions an envelope variant accepts.
// A zero upper bound leaves the range open above.
type VersionRange interface {
	Bounds() (lo, hi int)
}

// MinVersion is the oldest QPY version whose header layout is understood.
const MinVersion = 10

// AnyVersion accepts every QPY version with a v10+ header.
type AnyVersion struct{}

func (AnyVersion) Bounds() (int, int) { return MinVersion, 0 }

// V13ToV16 accepts QPY versions 13 through 16.
type V13ToV16 struct{}

func (V13ToV16) Bounds() (int, int) { return 13, 16 }

// V13ToV17 accepts QPY versions 13 through 17.
type V13ToV17 struct{}

func (V13ToV17) Bounds() (int, int) { return 13, 17 }

// Unchecked performs no header validation at all. Only TypedCircuit uses it.
type Unchecked struct{}

func (Unchecked) Bounds() (int, int) { return 0, 0 }

func bounds[R VersionRange]() (int, int) {
	var r R
	return r.Bounds()
}
