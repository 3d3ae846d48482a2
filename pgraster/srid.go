package pgraster

import (
	"database/sql"
	"errors"
	"fmt"
)

// ResolveSRID 在spatial_ref_sys中查找坐标参考描述对应的SRID，
// 未登记时注册新记录。任何失败都由调用方降级为SRID 0处理
func ResolveSRID(conn Conn, proj string) (int, error) {
	if proj == "" {
		return 0, nil
	}

	var srid int
	err := conn.QueryRow(fmt.Sprintf(
		"SELECT srid FROM spatial_ref_sys WHERE proj4text = %s LIMIT 1", QuoteLiteral(proj)), &srid)
	if err == nil {
		return srid, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("查询spatial_ref_sys失败: %w", err)
	}

	// 自定义投影从880001段开始编号，避开EPSG已占用区间
	if err := conn.QueryRow("SELECT GREATEST(COALESCE(MAX(srid), 0), 880000) + 1 FROM spatial_ref_sys", &srid); err != nil {
		return 0, fmt.Errorf("计算新SRID失败: %w", err)
	}
	insert := fmt.Sprintf(
		"INSERT INTO spatial_ref_sys (srid, auth_name, auth_srid, proj4text) VALUES (%d, 'rastermap', %d, %s)",
		srid, srid, QuoteLiteral(proj))
	if err := conn.Exec(insert); err != nil {
		return 0, fmt.Errorf("注册SRID %d失败: %w", srid, err)
	}
	return srid, nil
}
