package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/higpup01-design/proofok-simple/config"
	"github.com/higpup01-design/proofok-simple/models"
	"github.com/higpup01-design/proofok-simple/store"
	"github.com/higpup01-design/proofok-simple/utils"
)

// UploadController handles the HTML upload form and the JSON upload API.
type UploadController struct {
	cfg config.AppConfig
	st  *store.Store
	rdb *redis.Client
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(cfg config.AppConfig, st *store.Store, rdb *redis.Client) *UploadController {
	return &UploadController{cfg: cfg, st: st, rdb: rdb}
}

// FormPage renders the upload form.
func (u *UploadController) FormPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "upload.html", gin.H{"version": config.Version})
}

// FormUpload accepts a multipart PDF upload from the browser form and
// renders the share link page.
func (u *UploadController) FormUpload(ctx *gin.Context) {
	ip := ctx.ClientIP()
	if !utils.UploadCooldownTry(u.rdb, ip, u.cfg.UploadAttemptCooldownSec) {
		u.renderFormError(ctx, "Too many upload attempts. Please wait a moment and retry.")
		return
	}
	if !utils.UploadDailyLimitCheck(u.rdb, ip, u.cfg.UploadMaxPerIPPerDay) {
		u.renderFormError(ctx, "Daily upload limit reached for your address.")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil || !isPDF(header.Filename) {
		u.renderFormError(ctx, "Please choose a .pdf file.")
		return
	}
	defer file.Close()

	rec, err := u.saveUpload(file, header.Filename)
	if err != nil {
		if errors.Is(err, store.ErrTooLarge) {
			u.renderFormError(ctx, fmt.Sprintf("File exceeds the %dMB limit.", u.cfg.MaxUploadMB))
			return
		}
		utils.Sugar.Errorf("upload failed: %v", err)
		u.renderFormError(ctx, "Failed to store the upload. Please try again.")
		return
	}
	utils.UploadDailyIncrement(u.rdb, ip)

	proofLink := fmt.Sprintf("%s/proof/%s", baseURL(ctx, u.cfg.BaseURL), rec.Token)
	ctx.HTML(http.StatusOK, "uploaded.html", gin.H{
		"ok":            true,
		"url":           proofLink,
		"token":         rec.Token,
		"original_name": rec.OriginalName,
		"version":       config.Version,
	})
}

// APIUpload accepts a multipart PDF upload from an authenticated API client
// and answers JSON.
func (u *UploadController) APIUpload(ctx *gin.Context) {
	ip := ctx.ClientIP()
	if !utils.UploadCooldownTry(u.rdb, ip, u.cfg.UploadAttemptCooldownSec) {
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "too many upload attempts")
		return
	}
	if !utils.UploadDailyLimitCheck(u.rdb, ip, u.cfg.UploadMaxPerIPPerDay) {
		utils.Error(ctx, http.StatusTooManyRequests, 42903, "daily upload limit reached")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil || !isPDF(header.Filename) {
		utils.Error(ctx, http.StatusBadRequest, 40010, "please upload a .pdf file")
		return
	}
	defer file.Close()

	originalName := strings.TrimSpace(ctx.PostForm("original_name"))
	if originalName == "" {
		originalName = header.Filename
	}

	rec, err := u.saveUpload(file, originalName)
	if err != nil {
		if errors.Is(err, store.ErrTooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40011, fmt.Sprintf("file exceeds the %dMB limit", u.cfg.MaxUploadMB))
			return
		}
		utils.Sugar.Errorf("api upload failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to store the upload")
		return
	}
	utils.UploadDailyIncrement(u.rdb, ip)

	utils.Success(ctx, gin.H{
		"token": rec.Token,
		"url":   fmt.Sprintf("%s/proof/%s", baseURL(ctx, u.cfg.BaseURL), rec.Token),
	})
}

func (u *UploadController) saveUpload(file multipart.File, originalName string) (*models.Record, error) {
	token := models.NewToken()
	safeName := store.SafeName(originalName)
	maxBytes := int64(u.cfg.MaxUploadMB) * 1024 * 1024

	if _, err := u.st.SavePDF(token, safeName, file, maxBytes); err != nil {
		return nil, err
	}

	rec := models.NewRecord(token, originalName, safeName)
	if err := u.st.Save(rec); err != nil {
		return nil, err
	}
	utils.Sugar.Infof("upload stored token=%s name=%s", token, safeName)
	return rec, nil
}

func (u *UploadController) renderFormError(ctx *gin.Context, message string) {
	ctx.HTML(http.StatusOK, "uploaded.html", gin.H{
		"ok":      false,
		"message": message,
		"version": config.Version,
	})
}
