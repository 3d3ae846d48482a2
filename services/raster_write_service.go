package services

import (
	"encoding/json"
	"fmt"

	"github.com/GrainArc/RasterMap/models"
	"github.com/GrainArc/RasterMap/pgraster"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WriteRequest 栅格写入请求参数
type WriteRequest struct {
	TableName   string        `json:"table_name" binding:"required"`
	Bands       [][][]float64 `json:"bands" binding:"required"`
	BandNames   []string      `json:"band_names"`
	OriginX     float64       `json:"origin_x"`
	OriginY     float64       `json:"origin_y"`
	ResX        float64       `json:"res_x" binding:"required"`
	ResY        float64       `json:"res_y" binding:"required"`
	SRID        int           `json:"srid"`
	Proj        string        `json:"proj"`
	NoData      float64       `json:"nodata"`
	BitDepth    string        `json:"bit_depth"`
	Blocks      []int         `json:"blocks"` // [列块数, 行块数]
	Overwrite   bool          `json:"overwrite"`
	Append      bool          `json:"append"`
	Constraints *bool         `json:"constraints"`
}

// WriteResponse 栅格写入响应
type WriteResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// RasterWriteService 栅格上传任务服务
type RasterWriteService struct {
}

// StartWriteTask 启动异步上传任务
func (s *RasterWriteService) StartWriteTask(req *WriteRequest) (*WriteResponse, error) {
	// 生成TaskID
	taskID := uuid.New().String()

	// 序列化参数（不含像元数据，避免任务记录膨胀）
	argsJSON, _ := json.Marshal(map[string]interface{}{
		"table_name": req.TableName,
		"band_names": req.BandNames,
		"srid":       req.SRID,
		"bit_depth":  req.BitDepth,
		"blocks":     req.Blocks,
		"overwrite":  req.Overwrite,
		"append":     req.Append,
	})
	// 创建记录
	record := &models.RasterTask{
		TaskID:    taskID,
		DestTable: req.TableName,
		Status:    0, // 运行中
		TypeName:  "write_rast",
		Args:      datatypes.JSON(argsJSON),
	}
	if err := models.TaskDB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("创建任务记录失败: %w", err)
	}
	// 启动异步任务
	go s.executeWriteTask(taskID, req)
	return &WriteResponse{
		TaskID:  taskID,
		Message: "任务已提交",
	}, nil
}

// executeWriteTask 执行上传任务
func (s *RasterWriteService) executeWriteTask(taskID string, req *WriteRequest) {
	var finalStatus int = 1 // 默认成功
	var message string
	defer func() {
		if r := recover(); r != nil {
			finalStatus = 2 // 执行失败
			message = fmt.Sprintf("panic: %v", r)
		}
		// 更新任务状态
		models.TaskDB.Model(&models.RasterTask{}).Where("task_id = ?", taskID).
			Updates(map[string]interface{}{"status": finalStatus, "message": message})
	}()

	src := &pgraster.BandStack{
		Bands:     req.Bands,
		BandNames: req.BandNames,
		OriginX:   req.OriginX,
		OriginY:   req.OriginY,
		ResX:      req.ResX,
		ResY:      req.ResY,
		SRID:      req.SRID,
		Proj:      req.Proj,
		NoData:    req.NoData,
	}

	opts := pgraster.DefaultOptions()
	opts.Overwrite = req.Overwrite
	opts.Append = req.Append
	opts.BitDepth = pgraster.PixelType(req.BitDepth)
	if req.Constraints != nil {
		opts.Constraints = *req.Constraints
	}
	if len(req.Blocks) == 2 {
		opts.Blocks = &pgraster.BlockSpec{Cols: req.Blocks[0], Rows: req.Blocks[1]}
	}

	conn := &pgraster.GormConn{DB: models.DB}
	if err := pgraster.WriteRast(conn, req.TableName, src, opts); err != nil {
		finalStatus = 2
		message = err.Error()
		return
	}
}

// GetTaskStatus 查询任务状态
func (s *RasterWriteService) GetTaskStatus(taskID string) (*models.RasterTask, error) {
	var record models.RasterTask
	if err := models.TaskDB.Where("task_id = ?", taskID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
