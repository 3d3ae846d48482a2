package pggeom

import (
	"testing"

	"gitee.com/LJ_COOL/go-shp"
)

// shapefile外环顺时针、洞逆时针
func TestPartsToMultiPolygon(t *testing.T) {
	points := []shp.Point{
		// 外环（顺时针）
		{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0},
		// 洞（逆时针）
		{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}, {X: 1, Y: 1},
	}
	mp := partsToMultiPolygon(points, []int32{0, 5})
	if len(mp) != 1 {
		t.Fatalf("面数 = %d, want 1", len(mp))
	}
	if len(mp[0]) != 2 {
		t.Errorf("环数 = %d, want 外环+洞", len(mp[0]))
	}
}

func TestPartsToMultiPolygonTwoOuter(t *testing.T) {
	points := []shp.Point{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
		{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5},
	}
	mp := partsToMultiPolygon(points, []int32{0, 5})
	if len(mp) != 2 {
		t.Fatalf("面数 = %d, want 2", len(mp))
	}
}

func TestPartsToMultiLineString(t *testing.T) {
	points := []shp.Point{
		{X: 0, Y: 0}, {X: 1, Y: 1},
		{X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4},
	}
	mls := partsToMultiLineString(points, []int32{0, 2})
	if len(mls) != 2 {
		t.Fatalf("线数 = %d, want 2", len(mls))
	}
	if len(mls[0]) != 2 || len(mls[1]) != 3 {
		t.Errorf("分段长度 = %d/%d, want 2/3", len(mls[0]), len(mls[1]))
	}
}

func TestShapeToGeometryPoint(t *testing.T) {
	g := shapeToGeometry(&shp.Point{X: 1.5, Y: 2.5})
	if g == nil {
		t.Fatal("点几何转换失败")
	}
	if g.GeoJSONType() != "Point" {
		t.Errorf("类型 = %s, want Point", g.GeoJSONType())
	}
}

func TestDecodeText(t *testing.T) {
	if got := decodeText("plain", "UTF-8"); got != "plain" {
		t.Errorf("UTF-8透传失败: %q", got)
	}
	// GBK编码的"名称"
	gbk := string([]byte{0xc3, 0xfb, 0xb3, 0xc6})
	if got := decodeText(gbk, "GBK"); got != "名称" {
		t.Errorf("GBK解码 = %q, want 名称", got)
	}
}
