package views

import (
	"errors"
	"net/http"

	"github.com/GrainArc/RasterMap/models"
	"github.com/GrainArc/RasterMap/pggeom"
	"github.com/GrainArc/RasterMap/pgraster"
	"github.com/GrainArc/RasterMap/services"
	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
)

type RasterController struct {
	WriteService services.RasterWriteService
}

// WriteRast 提交栅格上传任务
func (rc *RasterController) WriteRast(c *gin.Context) {
	var req services.WriteRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := rc.WriteService.StartWriteTask(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTaskStatus 查询上传任务状态
func (rc *RasterController) GetTaskStatus(c *gin.Context) {
	taskID := c.Query("taskid")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少taskid参数"})
		return
	}
	record, err := rc.WriteService.GetTaskStatus(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GeomInsertRequest 矢量插入格式化请求
type GeomInsertRequest struct {
	TableName   string                    `json:"table_name"`
	GeomColumn  string                    `json:"geom_column"`
	CreateTable bool                      `json:"create_table"`
	MultiGeom   bool                      `json:"multi_geom"`
	ForceMatch  string                    `json:"force_match"`
	SRID        int                       `json:"srid"`
	Geojson     geojson.FeatureCollection `json:"geojson"`
}

// FormatGeomInsert 将GeoJSON要素集格式化为插入语句片段
func (rc *RasterController) FormatGeomInsert(c *gin.Context) {
	var req GeomInsertRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame := pggeom.FromFeatureCollection(&req.Geojson)
	opts := pggeom.InsertOptions{
		TableName:   req.TableName,
		CreateTable: req.CreateTable,
		MultiGeom:   req.MultiGeom,
		ForceMatch:  req.ForceMatch,
		SRID:        req.SRID,
	}
	if req.ForceMatch != "" {
		opts.Conn = &pgraster.GormConn{DB: models.DB}
	}

	out, err := pggeom.FormatGeomInsert(frame, req.GeomColumn, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ShpInsertRequest shapefile转插入语句请求
type ShpInsertRequest struct {
	SourcePath  string `json:"source_path" binding:"required"`
	TableName   string `json:"table_name"`
	GeomColumn  string `json:"geom_column"`
	CreateTable bool   `json:"create_table"`
	MultiGeom   bool   `json:"multi_geom"`
	ForceMatch  string `json:"force_match"`
	SRID        int    `json:"srid"`
}

// ShpToInsert 读取本地shapefile并格式化为插入语句片段
func (rc *RasterController) ShpToInsert(c *gin.Context) {
	var req ShpInsertRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := pggeom.ReadShapefile(req.SourcePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := pggeom.InsertOptions{
		TableName:   req.TableName,
		CreateTable: req.CreateTable,
		MultiGeom:   req.MultiGeom,
		ForceMatch:  req.ForceMatch,
		SRID:        req.SRID,
	}
	if req.ForceMatch != "" {
		opts.Conn = &pgraster.GormConn{DB: models.DB}
	}

	out, err := pggeom.FormatGeomInsert(frame, req.GeomColumn, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
