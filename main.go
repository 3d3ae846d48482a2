package main

import (
	"log"

	"github.com/GrainArc/RasterMap/config"
	"github.com/GrainArc/RasterMap/models"
	"github.com/GrainArc/RasterMap/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	models.InitDB()
	if err := models.InitTaskDatabase(); err != nil {
		log.Fatalf("任务数据库初始化失败: %v", err)
	}

	r := gin.Default()
	routers.RasterRouters(r)

	if err := r.Run(config.MainRouter); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}
