package research

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const topicPrefixLen = 30

// Filename names the downloadable report:
// research_report_<YYYYMMDD_HHMMSS>_<sanitized topic prefix>.md
func Filename(topic string, at time.Time) string {
	return fmt.Sprintf("research_report_%s_%s.md", at.Format("20060102_150405"), SanitizeTopic(topic))
}

// SanitizeTopic keeps letters, digits, spaces and hyphens from the first 30
// characters of topic, trims it and turns spaces into underscores.
func SanitizeTopic(topic string) string {
	runes := []rune(topic)
	if len(runes) > topicPrefixLen {
		runes = runes[:topicPrefixLen]
	}
	var b strings.Builder
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}
