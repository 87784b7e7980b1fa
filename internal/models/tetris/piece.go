package tetris

// PieceKind はテトリミノの種類を表します。
type PieceKind int

const (
	KindSquare PieceKind = iota // 0: 正方形 (O)
	KindT                       // 1: T
	KindL                       // 2: L
	KindJ                       // 3: J (逆L)
	KindZ                       // 4: Z
	KindS                       // 5: S
	KindI                       // 6: I
)

// NumKinds はピースの種類数です。
const NumKinds = 7

// MaxPieceHeight は全ピースの中で最も高いバウンディングボックスの高さです（Iミノ）。
const MaxPieceHeight = 4

// RotationPolicy はピースの種類ごとの回転方式です。
type RotationPolicy int

const (
	// RotateFree は要求された方向へ毎回90度回転します (T, L, J)。
	RotateFree RotationPolicy = iota
	// RotateNone は回転しません (Square)。
	RotateNone
	// RotateToggle は2つの向きの間を往復するだけです (Z, S, I)。
	// 180度回すと形が1行ずれて見えるため、要求された方向は無視されます。
	RotateToggle
)

// Shape はピースの静的な形状定義です。
// Offsets[0] が回転の中心（ピボット）です。Width/Height はプレビュー表示の中央寄せにのみ使います。
type Shape struct {
	Offsets [4]Coord
	Color   Color
	Width   int
	Height  int
	Policy  RotationPolicy
}

// shapes は各PieceKindの形状です。インデックスは PieceKind と一致します。
var shapes = [NumKinds]Shape{
	KindSquare: {
		//   0 1
		// 0 X X
		// 1 X X
		Offsets: [4]Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		Color:   "red",
		Width:   2,
		Height:  2,
		Policy:  RotateNone,
	},
	KindT: {
		//   0 1 2
		// 0 X X X
		// 1   X
		Offsets: [4]Coord{{1, 0}, {0, 0}, {2, 0}, {1, 1}},
		Color:   "yellow",
		Width:   3,
		Height:  2,
		Policy:  RotateFree,
	},
	KindL: {
		//   0 1
		// 0 X
		// 1 X
		// 2 X X
		Offsets: [4]Coord{{0, 1}, {0, 0}, {0, 2}, {1, 2}},
		Color:   "orange",
		Width:   2,
		Height:  3,
		Policy:  RotateFree,
	},
	KindJ: {
		//   0 1
		// 0   X
		// 1   X
		// 2 X X
		Offsets: [4]Coord{{1, 1}, {1, 0}, {0, 2}, {1, 2}},
		Color:   "green",
		Width:   2,
		Height:  3,
		Policy:  RotateFree,
	},
	KindZ: {
		//   0 1
		// 0   X
		// 1 X X
		// 2 X
		Offsets: [4]Coord{{0, 1}, {1, 0}, {1, 1}, {0, 2}},
		Color:   "purple",
		Width:   2,
		Height:  3,
		Policy:  RotateToggle,
	},
	KindS: {
		//   0 1
		// 0 X
		// 1 X X
		// 2   X
		Offsets: [4]Coord{{0, 1}, {0, 0}, {1, 1}, {1, 2}},
		Color:   "cyan",
		Width:   2,
		Height:  3,
		Policy:  RotateToggle,
	},
	KindI: {
		//   0
		// 0 X
		// 1 X
		// 2 X
		// 3 X
		Offsets: [4]Coord{{0, 1}, {0, 0}, {0, 2}, {0, 3}},
		Color:   "blue",
		Width:   1,
		Height:  4,
		Policy:  RotateToggle,
	},
}

// Valid は k が定義済みの種類であれば true を返します。
func (k PieceKind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

// Shape は種類 k の形状定義を返します。未定義の種類の場合は Square を返します。
func (k PieceKind) Shape() Shape {
	if !k.Valid() {
		return shapes[KindSquare]
	}
	return shapes[k]
}

func (k PieceKind) String() string {
	switch k {
	case KindSquare:
		return "O"
	case KindT:
		return "T"
	case KindL:
		return "L"
	case KindJ:
		return "J"
	case KindZ:
		return "Z"
	case KindS:
		return "S"
	case KindI:
		return "I"
	default:
		return "?"
	}
}

// ParseKind は文字列のテトリミノタイプ（"I", "O", "T"など）を PieceKind に変換します。
// "SQUARE" は "O" の別名として受け付けます。
func ParseKind(s string) (PieceKind, bool) {
	switch s {
	case "O", "SQUARE":
		return KindSquare, true
	case "T":
		return KindT, true
	case "L":
		return KindL, true
	case "J":
		return KindJ, true
	case "Z":
		return KindZ, true
	case "S":
		return KindS, true
	case "I":
		return KindI, true
	default:
		return KindSquare, false
	}
}

// AllKinds は全ての種類を定義順に返します。
func AllKinds() []PieceKind {
	kinds := make([]PieceKind, NumKinds)
	for i := range kinds {
		kinds[i] = PieceKind(i)
	}
	return kinds
}
