package report

import (
	"fmt"
	"strings"
)

// maxNotifyItems caps how many items the notification body lists.
const maxNotifyItems = 20

// FormatNotification renders the Markdown message body pushed to the
// notification channels.
func FormatNotification(rep *Report) (title, content string) {
	title = fmt.Sprintf("Trending News %s", rep.GeneratedAt.Format("2006-01-02 15:04"))

	var b strings.Builder
	items := rep.News.Items
	if len(items) > maxNotifyItems {
		items = items[:maxNotifyItems]
	}
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s](%s)", i+1, item.Title, item.URL)
		if rep.isNew(item.Title) {
			b.WriteString(" **new**")
		}
		fmt.Fprintf(&b, "\n   %s", item.SourceName)
		if len(item.MatchedKeywords) > 0 {
			fmt.Fprintf(&b, " | %s", strings.Join(item.MatchedKeywords, ", "))
		}
		b.WriteString("\n")
	}
	if len(rep.News.Items) > maxNotifyItems {
		fmt.Fprintf(&b, "\n...and %d more\n", len(rep.News.Items)-maxNotifyItems)
	}

	if len(rep.News.SourcesFailed) > 0 {
		fmt.Fprintf(&b, "\nFailed sources: %s\n", strings.Join(rep.News.SourcesFailed, ", "))
	}
	if rep.Analysis != nil && rep.Analysis.Enabled && rep.Analysis.Summary != "" {
		fmt.Fprintf(&b, "\n**Analysis**\n%s\n", rep.Analysis.Summary)
	}
	return title, b.String()
}
