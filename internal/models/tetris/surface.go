package tetris

// BlockHandle は描画面（Surface）上のブロックを指す不透明なハンドルです。
// 値の意味は Surface の実装にのみ依存します。
type BlockHandle uint64

// Color はブロックの色名です（"red", "cyan" など）。ピクセル値への変換は描画側の責務です。
type Color string

// Surface はエンジンがブロックを配置・移動・削除するための描画面です。
// 座標はグリッド単位で、ピクセルへの変換は実装側が行います。
type Surface interface {
	// Place はセル c に色 color のブロックを配置し、そのハンドルを返します。
	Place(c Coord, color Color) BlockHandle
	// Move はハンドル h のブロックを delta だけ相対移動します。
	Move(h BlockHandle, delta Coord)
	// Remove はハンドル h のブロックを削除し、ハンドルを解放します。
	Remove(h BlockHandle)
}

// Block は描画面上のハンドルと、そのブロックの絶対座標の組です。
type Block struct {
	Handle BlockHandle `json:"handle"`
	Coord  Coord       `json:"coord"`
}
