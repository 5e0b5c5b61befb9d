package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// maxUploadWidth 是落盘图片的最大宽度，超出时按比例缩小。
const maxUploadWidth = 1600

// UploadImage 处理图片上传请求，过宽的图片在保存前缩放。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片", "success": 0})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件", "success": 0})
		return
	}

	uploadDir := a.uploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败", "success": 0})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(uploadDir, newFilename)

	saved, err := a.saveResized(c, filePath, ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
		return
	}
	if !saved {
		// 无法解码的图片格式原样保存
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
			return
		}
	}

	uploadURL := a.uploadURL
	if uploadURL == "" {
		uploadURL = "/static/uploads"
	}
	fileURL := fmt.Sprintf("%s/%s", strings.TrimRight(uploadURL, "/"), newFilename)
	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "上传成功",
		"data": gin.H{
			"filePath": fileURL,
			"url":      fileURL,
		},
	})
}

// saveResized 尝试解码并按需缩放后保存，返回是否已处理该文件。
func (a *API) saveResized(c *gin.Context, filePath, ext string) (bool, error) {
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return false, nil
	}

	file, err := c.FormFile("image")
	if err != nil {
		return false, err
	}
	src, err := file.Open()
	if err != nil {
		return false, err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return false, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxUploadWidth {
		height := bounds.Dy() * maxUploadWidth / bounds.Dx()
		scaled := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	out, err := os.Create(filePath)
	if err != nil {
		return false, err
	}
	defer out.Close()

	if ext == ".png" {
		if err := png.Encode(out, img); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 88}); err != nil {
		return false, err
	}
	return true, nil
}
