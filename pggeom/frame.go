package pggeom

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoFrame 属性表加几何列的内存数据框。
// Rows各行与Columns对齐，nil表示缺失值；Geoms与Rows等长
type GeoFrame struct {
	Columns []string
	Rows    [][]interface{}
	Geoms   []orb.Geometry
}

// ColumnIndex 查找属性列下标
func (f *GeoFrame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// FromFeatureCollection 将GeoJSON要素集转换为GeoFrame，
// 属性列取全部要素属性键的并集，按名称排序保证确定性
func FromFeatureCollection(fc *geojson.FeatureCollection) *GeoFrame {
	keySet := make(map[string]bool)
	for _, feat := range fc.Features {
		for k := range feat.Properties {
			keySet[k] = true
		}
	}
	columns := make([]string, 0, len(keySet))
	for k := range keySet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	frame := &GeoFrame{Columns: columns}
	for _, feat := range fc.Features {
		row := make([]interface{}, len(columns))
		for i, k := range columns {
			if v, ok := feat.Properties[k]; ok {
				row[i] = v
			}
		}
		frame.Rows = append(frame.Rows, row)
		frame.Geoms = append(frame.Geoms, feat.Geometry)
	}
	return frame
}
