package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/higpup01-design/proofok-simple/models"
)

// Message is one notification email ready for delivery.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// BuildDecisionMessage renders the email sent to the sender after a
// reviewer decision. baseURL is the external base URL without trailing slash.
func BuildDecisionMessage(rec *models.Record, ev models.ResponseEvent, baseURL string) Message {
	proofURL := fmt.Sprintf("%s/proof/%s", baseURL, rec.Token)
	subject := fmt.Sprintf("[Proof] %s -- %s", rec.OriginalName, strings.ToUpper(ev.Decision))

	text := fmt.Sprintf(
		"Proof decision received.\n\n"+
			"File: %s\nLink: %s\nDecision: %s\nName: %s\nEmail: %s\nComment:\n%s\n\n"+
			"Time (UTC): %s\nIP: %s\n",
		rec.OriginalName, proofURL, ev.Decision,
		ev.ViewerName, ev.ViewerEmail, ev.Comment,
		ev.TsUTC, ev.IP,
	)

	htmlComment := strings.ReplaceAll(html.EscapeString(ev.Comment), "\n", "<br>")
	htmlBody := fmt.Sprintf(
		"<h2>Proof decision received</h2>"+
			"<p><b>File:</b> %s</p>"+
			"<p><b>Link:</b> <a href='%s'>%s</a></p>"+
			"<p><b>Decision:</b> %s</p>"+
			"<p><b>Name:</b> %s &lt;%s&gt;</p>"+
			"<p><b>Comment:</b><br>%s</p>"+
			"<p><small>Time (UTC): %s | IP: %s</small></p>",
		html.EscapeString(rec.OriginalName), proofURL, proofURL, ev.Decision,
		html.EscapeString(ev.ViewerName), html.EscapeString(ev.ViewerEmail),
		htmlComment, ev.TsUTC, ev.IP,
	)

	return Message{Subject: subject, HTML: htmlBody, Text: text}
}
