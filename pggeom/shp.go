package pggeom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ReadShapefile 读取shapefile为GeoFrame，属性值统一转为UTF-8字符串
func ReadShapefile(path string) (*GeoFrame, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开shapefile失败: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	enc := shapefileEncoding(path, fields)

	frame := &GeoFrame{}
	for _, field := range fields {
		name := decodeText(field.String(), enc)
		frame.Columns = append(frame.Columns, strings.ToLower(name))
	}

	for shape.Next() {
		n, p := shape.Shape()
		geom := shapeToGeometry(p)
		if geom == nil {
			continue
		}
		row := make([]interface{}, len(fields))
		for k := range fields {
			row[k] = decodeText(shape.ReadAttribute(n, k), enc)
		}
		frame.Rows = append(frame.Rows, row)
		frame.Geoms = append(frame.Geoms, geom)
	}
	if len(frame.Rows) == 0 {
		return nil, fmt.Errorf("shapefile %s 没有要素数据", path)
	}
	return frame, nil
}

// shapefileEncoding 读取cpg文件确定编码，缺失时用chardet探测字段名
func shapefileEncoding(path string, fields []shp.Field) string {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if data, err := os.ReadFile(filepath.Join(dir, base+".cpg")); err == nil {
		cpg := strings.ToUpper(strings.TrimSpace(string(data)))
		if strings.Contains(cpg, "UTF") {
			return "UTF-8"
		}
		return "GBK"
	}

	var sample []byte
	for _, field := range fields {
		sample = append(sample, []byte(field.String())...)
	}
	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(sample); err == nil && strings.Contains(result.Charset, "UTF") {
		return "UTF-8"
	}
	return "GBK"
}

func decodeText(s, enc string) string {
	if enc != "GBK" {
		return s
	}
	out, err := simplifiedchinese.GBK.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(out)
}

// shapeToGeometry shapefile几何转orb几何
func shapeToGeometry(shape shp.Shape) orb.Geometry {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PointM:
		return orb.Point{s.X, s.Y}
	case *shp.PolyLine:
		return partsToMultiLineString(s.Points, s.Parts)
	case *shp.PolyLineZ:
		return partsToMultiLineString(s.Points, s.Parts)
	case *shp.PolyLineM:
		return partsToMultiLineString(s.Points, s.Parts)
	case *shp.Polygon:
		return partsToMultiPolygon(s.Points, s.Parts)
	case *shp.PolygonZ:
		return partsToMultiPolygon(s.Points, s.Parts)
	case *shp.PolygonM:
		return partsToMultiPolygon(s.Points, s.Parts)
	}
	return nil
}

func partRings(points []shp.Point, parts []int32) []orb.Ring {
	var rings []orb.Ring
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		ring := make(orb.Ring, 0, end-int(start))
		for _, pt := range points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

func partsToMultiLineString(points []shp.Point, parts []int32) orb.MultiLineString {
	var mls orb.MultiLineString
	for _, ring := range partRings(points, parts) {
		mls = append(mls, orb.LineString(ring))
	}
	return mls
}

// partsToMultiPolygon 依shapefile环方向组装多面：
// 顺时针环为外环开新面，逆时针环作为前一面的洞
func partsToMultiPolygon(points []shp.Point, parts []int32) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, ring := range partRings(points, parts) {
		if signedArea(ring) <= 0 || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
		} else {
			mp[len(mp)-1] = append(mp[len(mp)-1], ring)
		}
	}
	return mp
}

func signedArea(ring orb.Ring) float64 {
	var area float64
	for i := 0; i < len(ring)-1; i++ {
		area += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return area / 2
}
