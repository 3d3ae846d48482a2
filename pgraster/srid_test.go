package pgraster

import (
	"errors"
	"strings"
	"testing"
)

var errDenied = errors.New("permission denied")

func TestResolveSRIDEmpty(t *testing.T) {
	srid, err := ResolveSRID(newFakeConn(), "")
	if err != nil || srid != 0 {
		t.Errorf("ResolveSRID(\"\") = %d, %v", srid, err)
	}
}

func TestResolveSRIDKnown(t *testing.T) {
	conn := newFakeConn()
	conn.knownSRID = 4490
	srid, err := ResolveSRID(conn, "+proj=longlat +ellps=GRS80 +no_defs")
	if err != nil {
		t.Fatalf("ResolveSRID: %v", err)
	}
	if srid != 4490 {
		t.Errorf("srid = %d, want 4490", srid)
	}
	if len(conn.execs) != 0 {
		t.Errorf("已登记投影不应再写spatial_ref_sys")
	}
}

// 未登记的投影注册到880001段
func TestResolveSRIDRegister(t *testing.T) {
	conn := newFakeConn()
	srid, err := ResolveSRID(conn, "+proj=aea +lat_1=25 +lat_2=47")
	if err != nil {
		t.Fatalf("ResolveSRID: %v", err)
	}
	if srid != 880001 {
		t.Errorf("srid = %d, want 880001", srid)
	}
	inserts := conn.execsContaining("INSERT INTO spatial_ref_sys")
	if len(inserts) != 1 {
		t.Fatalf("注册语句数 = %d, want 1", len(inserts))
	}
	if !strings.Contains(inserts[0], "'+proj=aea +lat_1=25 +lat_2=47'") {
		t.Errorf("注册语句缺少proj4定义: %s", inserts[0])
	}
}

// SRID解析失败不中止上传，降级为SRID 0
func TestWriteRastSRIDDowngrade(t *testing.T) {
	conn := newFakeConn()
	conn.execErr = func(sql string) error {
		if strings.Contains(sql, "spatial_ref_sys") {
			return errDenied
		}
		return nil
	}
	src := testStack(2, 2, 1)
	src.SRID = 0
	src.Proj = "+proj=aea"

	opts := DefaultOptions()
	opts.Progress = false
	opts.Blocks = &BlockSpec{Cols: 1, Rows: 1}

	if err := WriteRast(conn, "dem_tiles", src, opts); err != nil {
		t.Fatalf("WriteRast: %v", err)
	}
	inserts := conn.execsContaining("ST_MakeEmptyRaster")
	if len(inserts) != 1 || !strings.Contains(inserts[0], ", 0)") {
		t.Errorf("降级后未按SRID=0写入: %v", inserts)
	}
}
