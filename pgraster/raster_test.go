package pgraster

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGridCanonical(t *testing.T) {
	g := &Grid{
		Values:  [][]float64{{1, 2, 3}, {4, 5, 6}},
		Name:    "dem",
		OriginX: 100,
		OriginY: 40,
		ResX:    0.5,
		ResY:    0.25,
		SRID:    4326,
		NoData:  -9999,
	}
	r, err := Normalize(g)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Rows() != 2 || r.Cols() != 3 {
		t.Errorf("dims = %dx%d, want 2x3", r.Rows(), r.Cols())
	}
	if len(r.Bands) != 1 || r.BandNames[0] != "dem" {
		t.Errorf("bands = %d (%v)", len(r.Bands), r.BandNames)
	}
	if r.Extent.Min[0] != 100 || r.Extent.Max[0] != 101.5 {
		t.Errorf("x extent = [%v, %v], want [100, 101.5]", r.Extent.Min[0], r.Extent.Max[0])
	}
	if r.Extent.Max[1] != 40 || r.Extent.Min[1] != 39.5 {
		t.Errorf("y extent = [%v, %v], want [39.5, 40]", r.Extent.Min[1], r.Extent.Max[1])
	}
}

func TestBandStackMismatch(t *testing.T) {
	s := &BandStack{
		Bands: [][][]float64{
			{{1, 2}, {3, 4}},
			{{1, 2, 3}, {4, 5, 6}},
		},
		OriginX: 0, OriginY: 2, ResX: 1, ResY: 1,
	}
	_, err := Normalize(s)
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("err = %v, want ErrUnsupportedInput", err)
	}
}

func TestBandStackDefaultNames(t *testing.T) {
	s := &BandStack{
		Bands:   [][][]float64{{{1}}, {{2}}},
		OriginX: 0, OriginY: 1, ResX: 1, ResY: 1,
	}
	r, err := Normalize(s)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(r.BandNames) != 2 {
		t.Errorf("band names = %v, want两个空名", r.BandNames)
	}
}

// 无值列的点集补默认常量波段，缺失格点填NaN
func TestPointGridDefaultBand(t *testing.T) {
	p := &PointGrid{
		Points: []orb.Point{
			{0, 0}, {1, 0}, {2, 0},
			{0, 1}, {2, 1}, // (1,1)缺失
		},
		SRID:   4326,
		NoData: -1,
	}
	r, err := Normalize(p)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.Rows() != 2 || r.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", r.Rows(), r.Cols())
	}
	// 第0行是北侧，即y=1那一行
	if r.Bands[0][0][0] != 1 || r.Bands[0][0][2] != 1 {
		t.Errorf("默认波段值 = %v, want 1", r.Bands[0][0])
	}
	if !math.IsNaN(r.Bands[0][0][1]) {
		t.Errorf("缺失格点 = %v, want NaN", r.Bands[0][0][1])
	}
	// 点在像元中心，范围外扩半个像元
	if r.Extent.Min[0] != -0.5 || r.Extent.Max[0] != 2.5 {
		t.Errorf("x extent = [%v, %v], want [-0.5, 2.5]", r.Extent.Min[0], r.Extent.Max[0])
	}
}

func TestPointGridIrregular(t *testing.T) {
	p := &PointGrid{
		Points: []orb.Point{{0, 0}, {1, 0}, {2.5, 0}, {0, 1}, {1, 1}, {2.5, 1}},
	}
	_, err := Normalize(p)
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("err = %v, want ErrUnsupportedInput", err)
	}
}

func TestNormalizeNil(t *testing.T) {
	if _, err := Normalize(nil); !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("err = %v, want ErrUnsupportedInput", err)
	}
}

func TestDetectPixelType(t *testing.T) {
	tests := []struct {
		name  string
		bands [][][]float64
		want  PixelType
	}{
		{"整数值", [][][]float64{{{1, 2}, {3, 4}}}, PT32BSI},
		{"浮点值", [][][]float64{{{1, 2.5}}}, PT64BF},
		{"NaN不影响判断", [][][]float64{{{1, math.NaN()}}}, PT32BSI},
		{"超出int32范围", [][][]float64{{{1e12}}}, PT64BF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPixelType(tt.bands); got != tt.want {
				t.Errorf("DetectPixelType = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPixelTypeValid(t *testing.T) {
	if !PT8BUI.Valid() {
		t.Error("8BUI应为合法类型")
	}
	if PixelType("128BF").Valid() {
		t.Error("128BF不应为合法类型")
	}
}
