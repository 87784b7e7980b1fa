package tetris

// Coord はボード上のセル座標、またはピース内の相対オフセットを表す不変の整数ペアです。
// xは右方向、yは下方向に増加します。
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add は2つの座標を成分ごとに加算した座標を返します。
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub は成分ごとの差 c - o を返します。
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

// Direction はピースの移動方向です。
type Direction int

const (
	Left  Direction = iota // (-1, 0)
	Right                  // (1, 0)
	Down                   // (0, 1)
)

// Vector は方向に対応する単位ベクトルを返します。
func (d Direction) Vector() Coord {
	switch d {
	case Left:
		return Coord{X: -1, Y: 0}
	case Right:
		return Coord{X: 1, Y: 0}
	case Down:
		return Coord{X: 0, Y: 1}
	default:
		return Coord{}
	}
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}
