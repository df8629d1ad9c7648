// Package notify decides who hears about a finished call and dispatches
// the emails. The decision itself is a pure function over the state; the
// sending is fire and forget through the Sender interface.
package notify

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

// Recipient tags emitted by the policy.
const (
	TagManager     = "Manager"
	TagAgent       = "Agent"
	TagAgentAction = "Agent (Action Required)"
)

// Sender dispatches one notification. Failures are the sender's problem to
// log; they never reach pipeline state.
type Sender interface {
	Send(subject, recipient, body string)
}

// Decide returns the recipient tags for a finished call, in rule order.
// Scores of 5 and below escalate to the manager, 9 and above commend the
// agent; a score of 6-8 triggers neither. A non-empty action-item list
// always adds an agent notification, independent of the score or of
// whether the individual items carry usable text.
func Decide(st types.State) []string {
	tags := []string{}
	if st.SentimentScore <= 5 {
		tags = append(tags, TagManager)
	} else if st.SentimentScore >= 9 {
		tags = append(tags, TagAgent)
	}
	if len(st.ActionItems) > 0 {
		tags = append(tags, TagAgentAction)
	}
	return tags
}

// Notifier pairs the policy with a sender and the stakeholder addresses.
type Notifier struct {
	sender       Sender
	agentEmail   string
	managerEmail string
	log          *logrus.Entry
}

// NewNotifier reads AGENT_EMAIL and MANAGER_EMAIL from the environment.
func NewNotifier(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:       sender,
		agentEmail:   os.Getenv("AGENT_EMAIL"),
		managerEmail: os.Getenv("MANAGER_EMAIL"),
		log:          log.WithField("module", "notify"),
	}
}

// Process evaluates the policy for st and dispatches one email per matched
// rule. It returns the tags that were sent.
func (n *Notifier) Process(st types.State) []string {
	tags := Decide(st)
	for _, tag := range tags {
		switch tag {
		case TagManager:
			n.sender.Send(
				"⚠️ Urgent: Call Needs Attention",
				n.managerEmail,
				"Dear Manager,\n\n"+
					"Please review the following call summary and take appropriate action:\n\n"+
					st.CallSummary+"\n\n"+
					"Thank you,\nSupport Team",
			)
		case TagAgent:
			n.sender.Send(
				"🎉 Great Job!",
				n.agentEmail,
				"Dear Agent,\n\n"+
					"Fantastic performance on the recent call. Here is the call summary:\n\n"+
					st.CallSummary+"\n\n"+
					"Keep up the great work!\n\n"+
					"Best regards,\nSupport Team",
			)
		case TagAgentAction:
			n.sender.Send(
				"📌 Action Required: Follow-up Tasks",
				n.agentEmail,
				"Dear Agent,\n\n"+
					"Please address the following action items:\n"+
					FormatActionItems(st.ActionItems)+"\n\n"+
					"Thank you,\nSupport Team",
			)
		}
	}
	n.log.WithField("tags", tags).Info("notifications dispatched")
	return tags
}

// FormatActionItems renders the heterogeneous item shapes as one bulleted
// block.
func FormatActionItems(items []types.ActionItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %s", it.Task()))
	}
	return strings.Join(lines, "\n")
}
