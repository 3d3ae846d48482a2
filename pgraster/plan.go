package pgraster

import (
	"fmt"
	"math"
)

// DefaultBlockLimit 未指定分块时逻辑瓦块总数上限，
// 用于约束单块峰值内存
const DefaultBlockLimit = 100

// BlockSpec 显式分块参数：x方向与y方向的分块数
type BlockSpec struct {
	Cols int
	Rows int
}

// TileUnit 一个上传工作单元：某波段在某空间瓦块上的像元子窗口
type TileUnit struct {
	Band     int   // 波段号，从1开始
	RowBlock int   // 行块号，从1开始
	ColBlock int   // 列块号，从1开始
	RowOff   int   // 像元行偏移
	ColOff   int   // 像元列偏移
	Rows     int   // 子窗口行数
	Cols     int   // 子窗口列数
	RID      int64 // 目标行id，同一空间瓦块的各波段共享
}

// TilePlan 确定性的分块上传计划
type TilePlan struct {
	RowBlocks int
	ColBlocks int
	Units     []TileUnit
}

// SpatialTiles 空间瓦块数，即目标表中新增的行数
func (p *TilePlan) SpatialTiles() int {
	return p.RowBlocks * p.ColBlocks
}

// PlanBlocks 将栅格的行列空间切分为瓦块网格并分配行id。
// spec为nil时自动选择分块数使瓦块总数不超过DefaultBlockLimit。
// 行id从baseRID+1起连续分配，仅在band==1时分配新id，
// 高波段瓦块复用同一空间瓦块的id
func PlanBlocks(r *CanonicalRaster, spec *BlockSpec, baseRID int64) (*TilePlan, error) {
	rows := r.Rows()
	cols := r.Cols()
	bands := len(r.Bands)

	var rowBlocks, colBlocks int
	if spec == nil {
		// 行列各自独立切分，分块网格是笛卡尔积
		k := int(math.Ceil(math.Sqrt(DefaultBlockLimit)))
		rowBlocks = minInt(rows, k)
		colBlocks = minInt(cols, k)
	} else {
		if spec.Cols <= 0 || spec.Rows <= 0 {
			return nil, fmt.Errorf("%w: 分块数必须为正 (cols=%d, rows=%d)", ErrInvalidBlockSpec, spec.Cols, spec.Rows)
		}
		if spec.Cols > cols || spec.Rows > rows {
			return nil, fmt.Errorf("%w: 分块数超过栅格尺寸 (cols=%d/%d, rows=%d/%d)",
				ErrInvalidBlockSpec, spec.Cols, cols, spec.Rows, rows)
		}
		rowBlocks = spec.Rows
		colBlocks = spec.Cols
	}

	// 块尺寸向上取整，实际块数可能少于请求值，边缘块允许更小
	tileRows := ceilDiv(rows, rowBlocks)
	tileCols := ceilDiv(cols, colBlocks)
	rowBlocks = ceilDiv(rows, tileRows)
	colBlocks = ceilDiv(cols, tileCols)

	plan := &TilePlan{
		RowBlocks: rowBlocks,
		ColBlocks: colBlocks,
		Units:     make([]TileUnit, 0, rowBlocks*colBlocks*bands),
	}

	rid := baseRID
	for rb := 1; rb <= rowBlocks; rb++ {
		rowOff := (rb - 1) * tileRows
		nRows := minInt(tileRows, rows-rowOff)
		for cb := 1; cb <= colBlocks; cb++ {
			colOff := (cb - 1) * tileCols
			nCols := minInt(tileCols, cols-colOff)
			rid++
			for b := 1; b <= bands; b++ {
				plan.Units = append(plan.Units, TileUnit{
					Band:     b,
					RowBlock: rb,
					ColBlock: cb,
					RowOff:   rowOff,
					ColOff:   colOff,
					Rows:     nRows,
					Cols:     nCols,
					RID:      rid,
				})
			}
		}
	}
	return plan, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
