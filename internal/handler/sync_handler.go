package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunSync 立即对内容目录执行一次全量同步并返回报告。
func (a *API) RunSync(c *gin.Context) {
	report, err := a.sync.Sync()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "内容同步失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "内容已同步",
		"report": gin.H{
			"pages":    report.Pages,
			"posts":    report.Posts,
			"updated":  report.Updated,
			"removed":  report.Removed,
			"warnings": report.Warnings,
			"tookMs":   report.Took.Milliseconds(),
		},
	})
}
