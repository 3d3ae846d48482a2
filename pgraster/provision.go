package pgraster

import (
	"fmt"
	"log"
	"strings"
)

// CheckRasterSupport 检查目标库是否具备raster类型支持
func CheckRasterSupport(conn Conn) error {
	var ok bool
	err := conn.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_type WHERE typname = 'raster')`, &ok)
	if err != nil {
		return fmt.Errorf("检查raster扩展失败: %w", err)
	}
	if !ok {
		return ErrExtensionMissing
	}
	return nil
}

// TableExists 查询目标表是否存在
func TableExists(conn Conn, name string) (bool, error) {
	schema, table := splitTable(name)
	if schema == "" {
		schema = "public"
	}
	var exists bool
	err := conn.QueryRow(fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_schema = %s AND table_name = %s)`,
		QuoteLiteral(strings.ToLower(schema)), QuoteLiteral(strings.ToLower(table))), &exists)
	if err != nil {
		return false, fmt.Errorf("查询表%s是否存在失败: %w", name, err)
	}
	return exists, nil
}

// EnsureTable 保证目标表就绪并返回当前最大row_id。
// overwrite时先删除旧表；表不存在时按固定schema创建并返回0；
// 表存在且未指定overwrite/append时返回ErrDestinationExists；
// append时尽力删除旧约束（失败仅告警）并查询当前最大row_id
func EnsureTable(conn Conn, name string, overwrite, append bool) (int64, error) {
	if err := CheckRasterSupport(conn); err != nil {
		return 0, err
	}

	exists, err := TableExists(conn, name)
	if err != nil {
		return 0, err
	}

	if overwrite && exists {
		if err := conn.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteTable(name))); err != nil {
			return 0, fmt.Errorf("删除旧表%s失败: %w", name, err)
		}
		exists = false
	}

	if !exists {
		create := fmt.Sprintf(
			"CREATE TABLE %s (row_id serial PRIMARY KEY, band_names text[], source_class text, source_projection text, tile raster)",
			QuoteTable(name))
		if err := conn.Exec(create); err != nil {
			// 建表阶段才会真正触发raster列类型解析
			if strings.Contains(err.Error(), `type "raster"`) {
				return 0, fmt.Errorf("%w: %v", ErrExtensionMissing, err)
			}
			return 0, fmt.Errorf("创建表%s失败: %w", name, err)
		}
		return 0, nil
	}

	if !append {
		return 0, fmt.Errorf("%w: %s", ErrDestinationExists, name)
	}

	dropConstraints(conn, name)

	var maxRID int64
	if err := conn.QueryRow(fmt.Sprintf("SELECT COALESCE(MAX(row_id), 0) FROM %s", QuoteTable(name)), &maxRID); err != nil {
		return 0, fmt.Errorf("查询表%s最大row_id失败: %w", name, err)
	}
	return maxRID, nil
}

// dropConstraints 追加模式下尽力删除旧的栅格约束，失败不致命
func dropConstraints(conn Conn, name string) {
	schema, table := splitTable(name)
	if schema == "" {
		schema = "public"
	}
	sql := fmt.Sprintf("SELECT DropRasterConstraints(%s, %s, 'tile'::name)",
		QuoteLiteral(schema), QuoteLiteral(table))
	if err := conn.Exec(sql); err != nil {
		log.Printf("删除表%s旧栅格约束失败（忽略）: %v", name, err)
	}
}
