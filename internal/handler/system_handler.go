package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
		"storage":  a.media.StorageName(),
	})
}

// Ping is the liveness probe.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// DashboardStats 返回后台首页的统计数据
func (a *API) DashboardStats(c *gin.Context) {
	stats, err := a.dashboard.Stats()
	if err != nil {
		respondServiceError(c, err, "failed to load dashboard stats")
		return
	}

	content := make(gin.H, len(stats.Content))
	for name, count := range stats.Content {
		content[name] = gin.H{"total": count.Total, "published": count.Published}
	}
	c.JSON(http.StatusOK, gin.H{
		"content": content,
		"media": gin.H{
			"count":       stats.Media.Count,
			"total_bytes": stats.Media.TotalBytes,
		},
	})
}
