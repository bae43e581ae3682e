package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/higpup01-design/proofok-simple/models"
)

func TestBuildDecisionMessage(t *testing.T) {
	rec := models.NewRecord("abc123def456", "brochure.pdf", "brochure.pdf")
	ev := models.ResponseEvent{
		TsUTC:       "2026-01-02T03:04:05Z",
		Decision:    "rejected",
		Comment:     "colors are off\nsecond line",
		ViewerName:  "Dana",
		ViewerEmail: "dana@example.com",
		IP:          "203.0.113.9",
	}

	msg := BuildDecisionMessage(rec, ev, "https://proof.example.com")

	assert.Equal(t, "[Proof] brochure.pdf -- REJECTED", msg.Subject)
	assert.Contains(t, msg.Text, "https://proof.example.com/proof/abc123def456")
	assert.Contains(t, msg.Text, "colors are off")
	assert.Contains(t, msg.HTML, "colors are off<br>second line")
	assert.Contains(t, msg.HTML, "dana@example.com")
}

func TestBuildDecisionMessageEscapesHTML(t *testing.T) {
	rec := models.NewRecord("abc123def456", "a<b>.pdf", "ab.pdf")
	ev := models.ResponseEvent{Decision: "approved", ViewerName: "<script>x</script>"}

	msg := BuildDecisionMessage(rec, ev, "http://localhost:5000")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}
