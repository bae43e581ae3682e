package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higpup01-design/proofok-simple/middleware"
	"github.com/higpup01-design/proofok-simple/models"
	"github.com/higpup01-design/proofok-simple/notify"
	"github.com/higpup01-design/proofok-simple/store"
	"github.com/higpup01-design/proofok-simple/utils"
)

type recordingSender struct {
	sent atomic.Int32
	err  error
	last atomic.Value // notify.Message
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.sent.Add(1)
	s.last.Store(msg)
	return s.err
}

func seedRecord(t *testing.T, st *store.Store) *models.Record {
	t.Helper()
	token := models.NewToken()
	_, err := st.SavePDF(token, "flyer.pdf", strings.NewReader("%PDF-1.4"), 1024)
	require.NoError(t, err)
	rec := models.NewRecord(token, "flyer.pdf", "flyer.pdf")
	require.NoError(t, st.Save(rec))
	return rec
}

func newProofHarness(t *testing.T, sender notify.Sender, mode string) (*store.Store, *ProofController, func()) {
	t.Helper()
	st := newTestStore(t)
	n := notify.New(sender, notify.Options{
		Mode:        mode,
		Workers:     1,
		SendTimeout: 2 * time.Second,
	}, utils.Sugar)
	pc := NewProofController(testConfig(), st, n)
	return st, pc, n.Close
}

func postDecision(r http.Handler, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/respond/"+token, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProofPageRendersPDFLink(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.GET("/proof/:token", pc.ProofPage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/proof/"+rec.Token, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token="+rec.Token)
	assert.Contains(t, w.Body.String(), "pdf=/p/"+rec.Token+"/flyer.pdf")
}

func TestProofPageUnknownToken(t *testing.T) {
	_, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()

	r := newTestEngine()
	r.GET("/proof/:token", pc.ProofPage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/proof/ffffffffffff", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "This proof link was not found.")
}

func TestServePDFStreamsInline(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.GET("/p/:token/:filename", pc.ServePDF)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p/"+rec.Token+"/flyer.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestRespondApproveSendsEmail(t *testing.T) {
	sender := &recordingSender{}
	st, pc, closeFn := newProofHarness(t, sender, notify.ModeSync)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	w := postDecision(r, rec.Token, url.Values{
		"decision":    {"approved"},
		"viewer_name": {"Dana"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thank you. Your decision was recorded.")
	assert.NotContains(t, w.Body.String(), "warning=")

	stored, err := st.Load(rec.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	require.Len(t, stored.Responses, 1)
	assert.Equal(t, "Dana", stored.Responses[0].ViewerName)

	assert.Equal(t, int32(1), sender.sent.Load())
	msg := sender.last.Load().(notify.Message)
	assert.Contains(t, msg.Subject, "APPROVED")
	assert.Contains(t, msg.Subject, "flyer.pdf")
}

func TestRespondRejectRequiresComment(t *testing.T) {
	sender := &recordingSender{}
	st, pc, closeFn := newProofHarness(t, sender, notify.ModeSync)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	w := postDecision(r, rec.Token, url.Values{"decision": {"rejected"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please add a comment when rejecting.")

	stored, err := st.Load(rec.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Empty(t, stored.Responses)
	assert.Equal(t, int32(0), sender.sent.Load())
}

func TestRespondInvalidDecision(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeSync)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	w := postDecision(r, rec.Token, url.Values{"decision": {"maybe"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid decision.")
}

func TestRespondLastDecisionWins(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	postDecision(r, rec.Token, url.Values{"decision": {"approved"}})
	postDecision(r, rec.Token, url.Values{
		"decision": {"rejected"},
		"comment":  {"logo color is off"},
	})

	stored, err := st.Load(rec.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	require.Len(t, stored.Responses, 2)
	assert.Equal(t, models.StatusApproved, stored.Responses[0].Decision)
	assert.Equal(t, models.StatusRejected, stored.Responses[1].Decision)
}

func TestRespondEmailFailureStillPersists(t *testing.T) {
	sender := &recordingSender{err: errors.New("sendgrid down")}
	st, pc, closeFn := newProofHarness(t, sender, notify.ModeSync)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	w := postDecision(r, rec.Token, url.Values{"decision": {"approved"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thank you. Your decision was recorded.")
	assert.Contains(t, w.Body.String(), "Email send failed")

	stored, err := st.Load(rec.Token)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestRespondSanitizesReviewerText(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()
	rec := seedRecord(t, st)

	r := newTestEngine()
	r.POST("/respond/:token", pc.Respond)

	postDecision(r, rec.Token, url.Values{
		"decision":    {"rejected"},
		"comment":     {"<script>alert(1)</script>too dark"},
		"viewer_name": {"<b>Sam</b>"},
	})

	stored, err := st.Load(rec.Token)
	require.NoError(t, err)
	require.Len(t, stored.Responses, 1)
	assert.NotContains(t, stored.Responses[0].Comment, "<script>")
	assert.Contains(t, stored.Responses[0].Comment, "too dark")
	assert.Equal(t, "Sam", stored.Responses[0].ViewerName)
}

func TestAPIStatusRequiresBearerToken(t *testing.T) {
	st, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()
	rec := seedRecord(t, st)

	const secret = "test-secret"
	r := newTestEngine()
	g := r.Group("/api/v1")
	g.Use(middleware.AuthRequired(secret))
	g.GET("/proofs/:token", pc.APIStatus)

	// no token
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/proofs/"+rec.Token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// valid token
	jwt, err := utils.GenerateToken(secret, "sender-api", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proofs/"+rec.Token, nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
}

func TestAPIStatusUnknownToken(t *testing.T) {
	_, pc, closeFn := newProofHarness(t, &recordingSender{}, notify.ModeOff)
	defer closeFn()

	r := newTestEngine()
	r.GET("/api/v1/proofs/:token", pc.APIStatus)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/proofs/ffffffffffff", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 40410, resp.Code)
}
