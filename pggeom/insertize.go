package pggeom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GrainArc/RasterMap/pgraster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ErrColumnMismatch 目标表中找不到指定的几何列
var ErrColumnMismatch = errors.New("pggeom: 目标表中缺少几何列")

// InsertOptions 矢量插入格式化选项
type InsertOptions struct {
	TableName   string        // 目标表名（ForceMatch为空时必填）
	CreateTable bool          // 生成建表语句
	MultiGeom   bool          // 几何提升为MULTI形式
	ForceMatch  string        // 与已有表的列对齐
	Conn        pgraster.Conn // ForceMatch时必需
	SRID        int
}

// InsertFormat 格式化结果：目标表、可选建表语句、
// 插入列清单与VALUES子句
type InsertFormat struct {
	TargetTable string
	CreateSQL   string
	Columns     []string
	ValuesSQL   string
}

// FormatGeomInsert 将数据框格式化为PostGIS插入语句片段。
// 纯数据变换，除ForceMatch的列查询外不触碰数据库
func FormatGeomInsert(frame *GeoFrame, geomCol string, opts InsertOptions) (*InsertFormat, error) {
	if frame == nil || len(frame.Rows) == 0 {
		return nil, fmt.Errorf("pggeom: 数据框为空")
	}
	if len(frame.Geoms) != len(frame.Rows) {
		return nil, fmt.Errorf("pggeom: 几何数与行数不一致")
	}
	if geomCol == "" {
		geomCol = "geom"
	}

	target := opts.ForceMatch
	if target == "" {
		target = opts.TableName
	}
	if target == "" {
		return nil, fmt.Errorf("pggeom: 未指定目标表")
	}

	var insertCols []string
	var colIdx []int // 属性列在frame中的下标，几何列用-1占位
	if opts.ForceMatch != "" {
		if opts.Conn == nil {
			return nil, fmt.Errorf("pggeom: ForceMatch需要数据库连接")
		}
		destCols, err := tableColumns(opts.Conn, opts.ForceMatch)
		if err != nil {
			return nil, err
		}
		insertCols, colIdx, err = matchColumns(frame, geomCol, destCols)
		if err != nil {
			return nil, err
		}
	} else {
		for i, c := range frame.Columns {
			insertCols = append(insertCols, c)
			colIdx = append(colIdx, i)
		}
		insertCols = append(insertCols, geomCol)
		colIdx = append(colIdx, -1)
	}

	out := &InsertFormat{
		TargetTable: target,
		Columns:     insertCols,
	}

	if opts.CreateTable && opts.ForceMatch == "" {
		out.CreateSQL = buildCreateSQL(frame, target, geomCol, opts)
	}

	values := make([]string, len(frame.Rows))
	for ri, row := range frame.Rows {
		parts := make([]string, len(insertCols))
		for ci, fi := range colIdx {
			if fi < 0 {
				parts[ci] = geomValueSQL(frame.Geoms[ri], opts)
			} else {
				parts[ci] = valueLiteral(row[fi])
			}
		}
		values[ri] = "(" + strings.Join(parts, ", ") + ")"
	}
	out.ValuesSQL = strings.Join(values, ",\n")
	return out, nil
}

// matchColumns 将frame的列与目标表已有列对齐：
// 只保留两边都有的属性列并按目标表列序排列，几何列必须存在
func matchColumns(frame *GeoFrame, geomCol string, destCols []string) ([]string, []int, error) {
	frameIdx := make(map[string]int, len(frame.Columns))
	for i, c := range frame.Columns {
		frameIdx[strings.ToLower(c)] = i
	}

	var cols []string
	var idx []int
	geomFound := false
	for _, dc := range destCols {
		lower := strings.ToLower(dc)
		if lower == strings.ToLower(geomCol) {
			cols = append(cols, dc)
			idx = append(idx, -1)
			geomFound = true
			continue
		}
		if fi, ok := frameIdx[lower]; ok {
			cols = append(cols, dc)
			idx = append(idx, fi)
		}
	}
	if !geomFound {
		return nil, nil, fmt.Errorf("%w: %s", ErrColumnMismatch, geomCol)
	}
	return cols, idx, nil
}

// tableColumns 按ordinal_position读取目标表的列名
func tableColumns(conn pgraster.Conn, table string) ([]string, error) {
	schema := "public"
	name := table
	if i := strings.Index(table, "."); i >= 0 {
		schema = table[:i]
		name = table[i+1:]
	}
	sql := fmt.Sprintf(
		"SELECT column_name FROM information_schema.columns WHERE table_schema = %s AND table_name = %s ORDER BY ordinal_position",
		pgraster.QuoteLiteral(strings.ToLower(schema)), pgraster.QuoteLiteral(strings.ToLower(name)))
	cols, err := conn.QueryStrings(sql)
	if err != nil {
		return nil, fmt.Errorf("查询表%s列信息失败: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("查询表%s列信息失败: 表不存在或无列", table)
	}
	return cols, nil
}

// buildCreateSQL 按首个非空值推断列类型生成建表语句
func buildCreateSQL(frame *GeoFrame, target, geomCol string, opts InsertOptions) string {
	var cols []string
	for i, name := range frame.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", pgraster.QuoteIdent(name), inferColumnType(frame, i)))
	}
	geomType := "GEOMETRY"
	for _, g := range frame.Geoms {
		if g != nil {
			geomType = strings.ToUpper(g.GeoJSONType())
			break
		}
	}
	if opts.MultiGeom && !strings.HasPrefix(geomType, "MULTI") && geomType != "GEOMETRY" {
		geomType = "MULTI" + geomType
	}
	return fmt.Sprintf("CREATE TABLE %s (id SERIAL PRIMARY KEY, %s, %s GEOMETRY(%s, %d))",
		pgraster.QuoteTable(target), strings.Join(cols, ", "),
		pgraster.QuoteIdent(geomCol), geomType, opts.SRID)
}

func inferColumnType(frame *GeoFrame, col int) string {
	for _, row := range frame.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case bool:
			return "boolean"
		case int, int32, int64:
			return "integer"
		case float32, float64:
			return "double precision"
		default:
			return "text"
		}
	}
	return "text"
}

// geomValueSQL 几何值的ST_GeomFromText表达式，nil输出NULL
func geomValueSQL(g orb.Geometry, opts InsertOptions) string {
	if g == nil {
		return "NULL"
	}
	if opts.MultiGeom {
		g = promoteMulti(g)
	}
	return fmt.Sprintf("ST_GeomFromText(%s, %d)", pgraster.QuoteLiteral(wkt.MarshalString(g)), opts.SRID)
}

// promoteMulti 单部件几何提升为对应的MULTI类型
func promoteMulti(g orb.Geometry) orb.Geometry {
	switch t := g.(type) {
	case orb.Point:
		return orb.MultiPoint{t}
	case orb.LineString:
		return orb.MultiLineString{t}
	case orb.Polygon:
		return orb.MultiPolygon{t}
	}
	return g
}

// valueLiteral 属性值转SQL字面量。nil输出NULL关键字，
// 字符串"NULL"仍按字面量引号包裹
func valueLiteral(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pgraster.QuoteLiteral(t)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return pgraster.FormatFloat(float64(t))
	case float64:
		return pgraster.FormatFloat(t)
	default:
		return pgraster.QuoteLiteral(fmt.Sprintf("%v", t))
	}
}
