package pgraster

import (
	"fmt"
	"log"
	"strings"
)

// Options 栅格写入选项
type Options struct {
	BitDepth    PixelType  // 覆盖自动检测的像元类型
	Blocks      *BlockSpec // 覆盖默认分块
	Constraints bool       // 上传完成后注册栅格约束
	Overwrite   bool       // 覆盖已有表
	Append      bool       // 向已有表追加
	Progress    bool       // 按瓦块打印进度
}

// DefaultOptions 默认写入选项
func DefaultOptions() Options {
	return Options{Constraints: true, Progress: true}
}

// WriteRast 将栅格分块写入PostGIS表。
// 流程：归一化 -> 建表/追加 -> 分块计划 -> 逐瓦块上传 -> 建索引与约束。
// 上传语句串行执行，任一语句失败立即中止，已写入的瓦块保留
func WriteRast(conn Conn, table string, src SourceRaster, opts Options) error {
	r, err := Normalize(src)
	if err != nil {
		return err
	}

	if opts.BitDepth != "" && !opts.BitDepth.Valid() {
		return fmt.Errorf("无效的像元类型: %s", opts.BitDepth)
	}
	pixType := opts.BitDepth
	if pixType == "" {
		pixType = DetectPixelType(r.Bands)
	}

	if r.SRID == 0 && r.Proj != "" {
		srid, err := ResolveSRID(conn, r.Proj)
		if err != nil {
			// SRID解析失败只降级为未定义坐标系，不中止上传
			log.Printf("SRID解析失败，按SRID=0写入: %v", err)
			srid = 0
		}
		r.SRID = srid
	}

	baseRID, err := EnsureTable(conn, table, opts.Overwrite, opts.Append)
	if err != nil {
		return err
	}

	plan, err := PlanBlocks(r, opts.Blocks, baseRID)
	if err != nil {
		return err
	}

	if err := uploadTiles(conn, table, r, plan, pixType, opts.Progress); err != nil {
		return err
	}

	if err := buildIndex(conn, table, opts.Append); err != nil {
		return err
	}
	if opts.Constraints {
		addConstraints(conn, table)
	}

	log.Printf("表%s写入完成: %d个空间瓦块, %d个波段", table, plan.SpatialTiles(), len(r.Bands))
	return nil
}

// uploadTiles 按计划顺序逐单元上传。
// 同一空间瓦块内，band 1的建行与波段装配先于任何像元写入
func uploadTiles(conn Conn, table string, r *CanonicalRaster, plan *TilePlan, pixType PixelType, progress bool) error {
	qt := QuoteTable(table)
	total := len(plan.Units)

	for i, unit := range plan.Units {
		if unit.Band == 1 {
			if err := createTileRow(conn, qt, r, unit, pixType); err != nil {
				return &UploadError{Band: unit.Band, RowBlock: unit.RowBlock, ColBlock: unit.ColBlock, Err: err}
			}
		}
		if err := setTileValues(conn, qt, r, unit); err != nil {
			return &UploadError{Band: unit.Band, RowBlock: unit.RowBlock, ColBlock: unit.ColBlock, Err: err}
		}
		if progress {
			log.Printf("瓦块上传进度 %d/%d (row_id=%d, band=%d)", i+1, total, unit.RID, unit.Band)
		}
	}
	return nil
}

// createTileRow 插入空瓦块行并装配全部波段描述。
// 先回读瓦块自身的左上角坐标作为对齐锚点，再通过ST_SetUpperLeft
// 钉回该坐标，保证相邻瓦块的像元格网相位严格一致
func createTileRow(conn Conn, qt string, r *CanonicalRaster, unit TileUnit, pixType PixelType) error {
	west := r.Extent.Min[0] + float64(unit.ColOff)*r.ResX
	north := r.Extent.Max[1] - float64(unit.RowOff)*r.ResY

	insert := fmt.Sprintf(
		"INSERT INTO %s (row_id, band_names, source_class, source_projection, tile) VALUES (%d, %s, %s, %s, ST_MakeEmptyRaster(%d, %d, %s, %s, %s, %s, 0, 0, %d))",
		qt, unit.RID,
		TextArrayLiteral(r.BandNames),
		QuoteLiteral(r.Class),
		QuoteLiteral(r.Proj),
		unit.Cols, unit.Rows,
		FormatFloat(west), FormatFloat(north),
		FormatFloat(r.ResX), FormatFloat(-r.ResY),
		r.SRID)
	if err := conn.Exec(insert); err != nil {
		return fmt.Errorf("插入瓦块行失败: %w", err)
	}

	var ulx, uly float64
	anchor := fmt.Sprintf("SELECT ST_UpperLeftX(tile), ST_UpperLeftY(tile) FROM %s WHERE row_id = %d", qt, unit.RID)
	if err := conn.QueryRow(anchor, &ulx, &uly); err != nil {
		return fmt.Errorf("回读瓦块锚点失败: %w", err)
	}

	bandArgs := make([]string, len(r.Bands))
	for b := range r.Bands {
		bandArgs[b] = fmt.Sprintf("ROW(%d, '%s'::text, %s, %s)",
			b+1, pixType, FormatFloat(r.NoData), FormatFloat(r.NoData))
	}
	update := fmt.Sprintf(
		"UPDATE %s SET tile = ST_SetUpperLeft(ST_AddBand(tile, ARRAY[%s]::addbandarg[]), %s, %s) WHERE row_id = %d",
		qt, strings.Join(bandArgs, ", "),
		FormatFloat(ulx), FormatFloat(uly), unit.RID)
	if err := conn.Exec(update); err != nil {
		return fmt.Errorf("装配波段失败: %w", err)
	}
	return nil
}

// setTileValues 写入指定波段子窗口的像元值，
// 缺失像元一律替换为NoData哨兵，不会出现SQL NULL
func setTileValues(conn Conn, qt string, r *CanonicalRaster, unit TileUnit) error {
	matrix := valueMatrixSQL(r, unit)
	update := fmt.Sprintf(
		"UPDATE %s SET tile = ST_SetValues(tile, %d, 1, 1, %s) WHERE row_id = %d",
		qt, unit.Band, matrix, unit.RID)
	if err := conn.Exec(update); err != nil {
		return fmt.Errorf("写入像元值失败: %w", err)
	}
	return nil
}

// valueMatrixSQL 序列化子窗口为double precision二维数组表达式
func valueMatrixSQL(r *CanonicalRaster, unit TileUnit) string {
	band := r.Bands[unit.Band-1]
	var sb strings.Builder
	sb.WriteString("ARRAY[")
	for i := 0; i < unit.Rows; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("[")
		row := band[unit.RowOff+i]
		for j := 0; j < unit.Cols; j++ {
			if j > 0 {
				sb.WriteString(",")
			}
			v := row[unit.ColOff+j]
			if v != v { // NaN
				v = r.NoData
			}
			sb.WriteString(FormatFloat(v))
		}
		sb.WriteString("]")
	}
	sb.WriteString("]::double precision[][]")
	return sb.String()
}

// buildIndex 对瓦块凸包建GIST空间索引，追加模式先删旧索引
func buildIndex(conn Conn, table string, appendMode bool) error {
	_, bare := splitTable(table)
	idx := bare + "_tile_gix"
	if appendMode {
		if err := conn.Exec(fmt.Sprintf("DROP INDEX IF EXISTS %s", QuoteIdent(idx))); err != nil {
			return fmt.Errorf("删除旧空间索引失败: %w", err)
		}
	}
	create := fmt.Sprintf("CREATE INDEX %s ON %s USING GIST (ST_ConvexHull(tile))",
		QuoteIdent(idx), QuoteTable(table))
	if err := conn.Exec(create); err != nil {
		return fmt.Errorf("创建空间索引失败: %w", err)
	}
	return nil
}

// addConstraints 注册栅格完整性约束，失败仅告警不影响结果
func addConstraints(conn Conn, table string) {
	schema, bare := splitTable(table)
	if schema == "" {
		schema = "public"
	}
	sql := fmt.Sprintf("SELECT AddRasterConstraints(%s::name, %s::name, 'tile'::name)",
		QuoteLiteral(schema), QuoteLiteral(bare))
	if err := conn.Exec(sql); err != nil {
		log.Printf("注册表%s栅格约束失败（忽略）: %v", table, err)
	}
}
