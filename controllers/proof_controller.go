package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/higpup01-design/proofok-simple/config"
	"github.com/higpup01-design/proofok-simple/models"
	"github.com/higpup01-design/proofok-simple/notify"
	"github.com/higpup01-design/proofok-simple/store"
	"github.com/higpup01-design/proofok-simple/utils"
)

// ProofController serves the reviewer-facing pages and records decisions.
type ProofController struct {
	cfg      config.AppConfig
	st       *store.Store
	notifier *notify.Notifier
}

// NewProofController creates a new ProofController instance.
func NewProofController(cfg config.AppConfig, st *store.Store, notifier *notify.Notifier) *ProofController {
	return &ProofController{cfg: cfg, st: st, notifier: notifier}
}

// ProofPage renders the review page with the embedded PDF.
func (p *ProofController) ProofPage(ctx *gin.Context) {
	token := ctx.Param("token")
	rec, err := p.st.Load(token)
	if err != nil {
		p.renderResult(ctx, http.StatusNotFound, false, "This proof link was not found.", "", token, "")
		return
	}

	ctx.HTML(http.StatusOK, "proof.html", gin.H{
		"token":         token,
		"original_name": rec.OriginalName,
		"pdf_url":       fmt.Sprintf("/p/%s/%s", token, url.PathEscape(rec.StoredName)),
		"base_url":      baseURL(ctx, p.cfg.BaseURL),
		"version":       config.Version,
	})
}

// ServePDF streams the stored PDF inline.
func (p *ProofController) ServePDF(ctx *gin.Context) {
	token := ctx.Param("token")
	filename := ctx.Param("filename")

	path, err := p.st.PDFPath(token, filename)
	if err != nil {
		ctx.String(http.StatusNotFound, "404 page not found")
		return
	}

	ctx.Header("Content-Type", "application/pdf")
	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", store.SafeName(filename)))
	ctx.File(path)
}

// Respond records a reviewer decision, persists it and triggers the
// notification. Notification problems downgrade to a warning; the decision
// is already on disk by then.
func (p *ProofController) Respond(ctx *gin.Context) {
	token := ctx.Param("token")
	rec, err := p.st.Load(token)
	if err != nil {
		p.renderResult(ctx, http.StatusOK, false, "This proof link was not found.", "", token, "")
		return
	}

	ev := models.ResponseEvent{
		TsUTC:       models.NowUTC(),
		Decision:    strings.ToLower(strings.TrimSpace(ctx.PostForm("decision"))),
		Comment:     strings.TrimSpace(utils.Sanitize(ctx.PostForm("comment"))),
		ViewerName:  strings.TrimSpace(utils.Sanitize(ctx.PostForm("viewer_name"))),
		ViewerEmail: strings.TrimSpace(utils.Sanitize(ctx.PostForm("viewer_email"))),
		IP:          ctx.ClientIP(),
	}

	if err := rec.ApplyDecision(ev); err != nil {
		switch {
		case errors.Is(err, models.ErrCommentRequired):
			p.renderResult(ctx, http.StatusOK, false, "Please add a comment when rejecting.", "", token, rec.OriginalName)
		case errors.Is(err, models.ErrInvalidDecision):
			p.renderResult(ctx, http.StatusOK, false, "Invalid decision.", "", token, rec.OriginalName)
		default:
			p.renderResult(ctx, http.StatusOK, false, "Could not record your decision.", "", token, rec.OriginalName)
		}
		return
	}

	if err := p.st.Save(rec); err != nil {
		utils.Sugar.Errorf("save decision failed token=%s: %v", token, err)
		p.renderResult(ctx, http.StatusInternalServerError, false, "Failed to record your decision.", "", token, rec.OriginalName)
		return
	}

	utils.Sugar.Infof("decision recorded token=%s decision=%s viewer=%s <%s> ip=%s",
		token, ev.Decision, ev.ViewerName, ev.ViewerEmail, ev.IP)

	msg := notify.BuildDecisionMessage(rec, ev, baseURL(ctx, p.cfg.BaseURL))
	warning := p.notifier.Notify(msg)

	p.renderResult(ctx, http.StatusOK, true, "Thank you. Your decision was recorded.", warning, token, rec.OriginalName)
}

// APIStatus returns the record for a token to an authenticated API client.
func (p *ProofController) APIStatus(ctx *gin.Context) {
	token := ctx.Param("token")
	rec, err := p.st.Load(token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "proof not found")
			return
		}
		utils.Sugar.Errorf("load record failed token=%s: %v", token, err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load record")
		return
	}
	utils.Success(ctx, gin.H{"record": rec})
}

func (p *ProofController) renderResult(ctx *gin.Context, status int, ok bool, message, warning, token, originalName string) {
	ctx.HTML(status, "result.html", gin.H{
		"ok":            ok,
		"message":       message,
		"warning":       warning,
		"token":         token,
		"original_name": originalName,
		"base_url":      baseURL(ctx, p.cfg.BaseURL),
		"version":       config.Version,
	})
}
