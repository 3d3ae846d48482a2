package pgraster

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// CanonicalRaster 归一化后的规则格网多波段栅格。
// 像元按行存储，第0行对应北侧边界，缺失像元以NaN标记，
// 序列化时统一替换为NoData哨兵值
type CanonicalRaster struct {
	Extent    orb.Bound     // 地理范围（西/南/东/北边界）
	ResX      float64       // 像元宽度
	ResY      float64       // 像元高度
	Bands     [][][]float64 // [band][row][col]
	BandNames []string
	SRID      int
	Proj      string // 坐标参考描述，SRID为0时用于查询注册
	NoData    float64
	Class     string // 源数据类别标签
}

// Rows 行数，由范围与分辨率精确确定
func (r *CanonicalRaster) Rows() int {
	return len(r.Bands[0])
}

// Cols 列数
func (r *CanonicalRaster) Cols() int {
	return len(r.Bands[0][0])
}

// SourceRaster 可归一化为规则格网的栅格输入
type SourceRaster interface {
	Canonical() (*CanonicalRaster, error)
}

// Normalize 将任意输入归一化为CanonicalRaster并校验不变量
func Normalize(src SourceRaster) (*CanonicalRaster, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: 输入为空", ErrUnsupportedInput)
	}
	r, err := src.Canonical()
	if err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CanonicalRaster) validate() error {
	if len(r.Bands) == 0 {
		return fmt.Errorf("%w: 波段数为0", ErrUnsupportedInput)
	}
	if r.ResX <= 0 || r.ResY <= 0 {
		return fmt.Errorf("%w: 分辨率必须为正数", ErrUnsupportedInput)
	}
	rows := len(r.Bands[0])
	if rows == 0 || len(r.Bands[0][0]) == 0 {
		return fmt.Errorf("%w: 格网尺寸为0", ErrUnsupportedInput)
	}
	cols := len(r.Bands[0][0])
	for bi, band := range r.Bands {
		if len(band) != rows {
			return fmt.Errorf("%w: 波段%d行数不一致", ErrUnsupportedInput, bi+1)
		}
		for ri, row := range band {
			if len(row) != cols {
				return fmt.Errorf("%w: 波段%d第%d行列数不一致", ErrUnsupportedInput, bi+1, ri+1)
			}
		}
	}
	// 范围与分辨率必须整除出行列数，边界不允许出现半个像元
	width := r.Extent.Max[0] - r.Extent.Min[0]
	height := r.Extent.Max[1] - r.Extent.Min[1]
	if !dimMatch(width, r.ResX, cols) || !dimMatch(height, r.ResY, rows) {
		return fmt.Errorf("%w: 范围与分辨率不匹配格网尺寸", ErrUnsupportedInput)
	}
	if len(r.BandNames) == 0 {
		r.BandNames = make([]string, len(r.Bands))
	}
	if len(r.BandNames) != len(r.Bands) {
		return fmt.Errorf("%w: 波段名数量与波段数不一致", ErrUnsupportedInput)
	}
	return nil
}

func dimMatch(span, res float64, n int) bool {
	return math.Abs(span-res*float64(n)) < res*1e-6
}

// Grid 单波段矩阵输入。OriginX/OriginY为左上角（西北角）坐标
type Grid struct {
	Values   [][]float64
	Name     string
	OriginX  float64
	OriginY  float64
	ResX     float64
	ResY     float64
	SRID     int
	Proj     string
	NoData   float64
}

func (g *Grid) Canonical() (*CanonicalRaster, error) {
	if len(g.Values) == 0 || len(g.Values[0]) == 0 {
		return nil, fmt.Errorf("%w: 空矩阵", ErrUnsupportedInput)
	}
	rows := len(g.Values)
	cols := len(g.Values[0])
	return &CanonicalRaster{
		Extent: orb.Bound{
			Min: orb.Point{g.OriginX, g.OriginY - float64(rows)*g.ResY},
			Max: orb.Point{g.OriginX + float64(cols)*g.ResX, g.OriginY},
		},
		ResX:      g.ResX,
		ResY:      g.ResY,
		Bands:     [][][]float64{g.Values},
		BandNames: []string{g.Name},
		SRID:      g.SRID,
		Proj:      g.Proj,
		NoData:    g.NoData,
		Class:     "Grid",
	}, nil
}

// BandStack 多波段堆栈输入，各波段共享同一格网
type BandStack struct {
	Bands     [][][]float64
	BandNames []string
	OriginX   float64
	OriginY   float64
	ResX      float64
	ResY      float64
	SRID      int
	Proj      string
	NoData    float64
}

func (s *BandStack) Canonical() (*CanonicalRaster, error) {
	if len(s.Bands) == 0 || len(s.Bands[0]) == 0 || len(s.Bands[0][0]) == 0 {
		return nil, fmt.Errorf("%w: 空波段堆栈", ErrUnsupportedInput)
	}
	rows := len(s.Bands[0])
	cols := len(s.Bands[0][0])
	names := s.BandNames
	if len(names) == 0 {
		names = make([]string, len(s.Bands))
	}
	return &CanonicalRaster{
		Extent: orb.Bound{
			Min: orb.Point{s.OriginX, s.OriginY - float64(rows)*s.ResY},
			Max: orb.Point{s.OriginX + float64(cols)*s.ResX, s.OriginY},
		},
		ResX:      s.ResX,
		ResY:      s.ResY,
		Bands:     s.Bands,
		BandNames: names,
		SRID:      s.SRID,
		Proj:      s.Proj,
		NoData:    s.NoData,
		Class:     "BandStack",
	}, nil
}

// PointGrid 规则点集输入，点位于像元中心。
// Values为空时补充默认常量波段，保持多波段模型统一
type PointGrid struct {
	Points []orb.Point
	Values []float64
	Name   string
	SRID   int
	Proj   string
	NoData float64
}

func (p *PointGrid) Canonical() (*CanonicalRaster, error) {
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("%w: 空点集", ErrUnsupportedInput)
	}
	if p.Values != nil && len(p.Values) != len(p.Points) {
		return nil, fmt.Errorf("%w: 点数与值数不一致", ErrUnsupportedInput)
	}

	xs := uniqueSorted(p.Points, 0)
	ys := uniqueSorted(p.Points, 1)
	resX, okX := uniformStep(xs)
	resY, okY := uniformStep(ys)
	if !okX || !okY {
		return nil, fmt.Errorf("%w: 点集不构成等间距格网", ErrUnsupportedInput)
	}

	rows := len(ys)
	cols := len(xs)
	values := make([][]float64, rows)
	for i := range values {
		values[i] = make([]float64, cols)
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}
	for i, pt := range p.Points {
		ci := indexOf(xs, pt[0], resX)
		ri := indexOf(ys, pt[1], resY)
		if ci < 0 || ri < 0 {
			return nil, fmt.Errorf("%w: 点(%v,%v)不在格网上", ErrUnsupportedInput, pt[0], pt[1])
		}
		v := 1.0 // 无值列时的默认常量波段
		if p.Values != nil {
			v = p.Values[i]
		}
		// ys升序排列，行序需翻转为北在前
		values[rows-1-ri][ci] = v
	}

	return &CanonicalRaster{
		Extent: orb.Bound{
			Min: orb.Point{xs[0] - resX/2, ys[0] - resY/2},
			Max: orb.Point{xs[cols-1] + resX/2, ys[rows-1] + resY/2},
		},
		ResX:      resX,
		ResY:      resY,
		Bands:     [][][]float64{values},
		BandNames: []string{p.Name},
		SRID:      p.SRID,
		Proj:      p.Proj,
		NoData:    p.NoData,
		Class:     "PointGrid",
	}, nil
}

func uniqueSorted(points []orb.Point, dim int) []float64 {
	seen := make(map[float64]bool, len(points))
	var out []float64
	for _, pt := range points {
		if !seen[pt[dim]] {
			seen[pt[dim]] = true
			out = append(out, pt[dim])
		}
	}
	sort.Float64s(out)
	return out
}

func uniformStep(vals []float64) (float64, bool) {
	if len(vals) == 1 {
		return 1, true
	}
	step := vals[1] - vals[0]
	if step <= 0 {
		return 0, false
	}
	for i := 2; i < len(vals); i++ {
		if math.Abs((vals[i]-vals[i-1])-step) > step*1e-6 {
			return 0, false
		}
	}
	return step, true
}

func indexOf(vals []float64, v, step float64) int {
	i := int(math.Round((v - vals[0]) / step))
	if i < 0 || i >= len(vals) || math.Abs(vals[i]-v) > step*1e-6 {
		return -1
	}
	return i
}
