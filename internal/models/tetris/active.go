package tetris

// ActivePiece は描画面上に配置された、操作中（またはプレビュー中）のピースです。
// 4つのブロック（ハンドルと絶対座標）と、トグル回転用の向きフラグを保持します。
type ActivePiece struct {
	kind      PieceKind
	surface   Surface
	blocks    [4]Block
	clockwise bool // RotateToggle 用: 次の回転が時計回りかどうか
}

// NewActivePiece は種類 kind のピースを offset の位置で surface 上に配置します。
func NewActivePiece(kind PieceKind, surface Surface, offset Coord) *ActivePiece {
	shape := kind.Shape()
	p := &ActivePiece{
		kind:      kind,
		surface:   surface,
		clockwise: true,
	}
	for i, rel := range shape.Offsets {
		c := rel.Add(offset)
		p.blocks[i] = Block{Handle: surface.Place(c, shape.Color), Coord: c}
	}
	return p
}

// Kind はピースの種類を返します。
func (p *ActivePiece) Kind() PieceKind { return p.kind }

// Blocks は現在のブロックのコピーを返します。Blocks()[0] がピボットです。
func (p *ActivePiece) Blocks() []Block {
	out := make([]Block, len(p.blocks))
	copy(out, p.blocks[:])
	return out
}

// Coords は現在の4ブロックの絶対座標を返します。
func (p *ActivePiece) Coords() []Coord {
	out := make([]Coord, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.Coord
	}
	return out
}

// Fits は現在の配置が grid 上で合法であれば true を返します（スポーン可否の判定に使います）。
func (p *ActivePiece) Fits(grid *Grid) bool {
	for _, b := range p.blocks {
		if !grid.IsLegal(b.Coord) {
			return false
		}
	}
	return true
}

// Move はピースを dir 方向に1マス動かします。
// 4ブロック全ての移動先が合法な場合のみ確定し、1つでも不正なら何も変更せず false を返します。
// 下方向への移動失敗は着地（ロック）の合図です。
func (p *ActivePiece) Move(grid *Grid, dir Direction) bool {
	delta := dir.Vector()
	var targets [4]Coord
	for i, b := range p.blocks {
		targets[i] = b.Coord.Add(delta)
		if !grid.IsLegal(targets[i]) {
			return false
		}
	}
	p.commit(targets)
	return true
}

// Rotate はピボット（0番目のブロック）を中心にピースを90度回転させます。
// 回転方式はピースの種類で決まります:
//   - RotateFree: clockwise の指定通りに回転
//   - RotateNone: 何もせず常に true（グリッドにも触れない）
//   - RotateToggle: clockwise を無視し、内部フラグの向きに回転してフラグを反転
func (p *ActivePiece) Rotate(grid *Grid, clockwise bool) bool {
	switch p.kind.Shape().Policy {
	case RotateNone:
		return true
	case RotateToggle:
		if !p.rotate(grid, p.clockwise) {
			return false
		}
		p.clockwise = !p.clockwise
		return true
	default:
		return p.rotate(grid, clockwise)
	}
}

func (p *ActivePiece) rotate(grid *Grid, clockwise bool) bool {
	pivot := p.blocks[0].Coord
	var targets [4]Coord
	for i, b := range p.blocks {
		rel := b.Coord.Sub(pivot)
		if clockwise {
			rel = Coord{X: rel.Y, Y: -rel.X}
		} else {
			rel = Coord{X: -rel.Y, Y: rel.X}
		}
		targets[i] = pivot.Add(rel)
		if !grid.IsLegal(targets[i]) {
			return false
		}
	}
	p.commit(targets)
	return true
}

// commit は検証済みの移動先を確定し、描画面に各ブロックの差分移動を通知します。
func (p *ActivePiece) commit(targets [4]Coord) {
	for i := range p.blocks {
		delta := targets[i].Sub(p.blocks[i].Coord)
		if delta != (Coord{}) {
			p.surface.Move(p.blocks[i].Handle, delta)
		}
		p.blocks[i].Coord = targets[i]
	}
}

// Release はピースの全ブロックを描画面から削除します。
// グリッドにマージ済みのピースに対して呼んではいけません（ハンドルの所有権はグリッドに移っています）。
func (p *ActivePiece) Release() {
	for _, b := range p.blocks {
		p.surface.Remove(b.Handle)
	}
}
