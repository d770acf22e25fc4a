package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
)

const messageTimeFormat = "2006-01-02 15:04"

const postponedFollowUp = "\n\n⚠️ Action required: Please discuss with BDM to set a new cut-off date."

func formatStatusChange(changerName, clientName string, status activity.Status, note string) string {
	var b strings.Builder
	b.WriteString("📌 Client Status Updated\n")
	b.WriteString(fmt.Sprintf("👤 Changed by: %s\n", changerName))
	b.WriteString(fmt.Sprintf("🏢 Client: %s\n", clientName))
	b.WriteString(fmt.Sprintf("📊 New Status: %s\n", status))
	b.WriteString(fmt.Sprintf("🗓 Date: %s\n", time.Now().Format(messageTimeFormat)))
	b.WriteString(fmt.Sprintf("📝 Note: \"%s\"", note))
	return b.String()
}

func formatAssignment(managerName, assigneeName, clientName, title, note string) string {
	var b strings.Builder
	b.WriteString("✅ New Task Assigned\n")
	b.WriteString(fmt.Sprintf("👤 Assigned by: %s\n", managerName))
	b.WriteString(fmt.Sprintf("👥 Assigned to: %s\n", assigneeName))
	b.WriteString(fmt.Sprintf("🏢 Client: %s\n", clientName))
	b.WriteString(fmt.Sprintf("📋 Task: %s\n", title))
	b.WriteString(fmt.Sprintf("🗓 Date: %s\n", time.Now().Format(messageTimeFormat)))
	b.WriteString(fmt.Sprintf("📝 Note: \"%s\"", note))
	return b.String()
}
