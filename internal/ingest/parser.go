package ingest

import (
	"regexp"
	"strings"
	"time"

	model "reuse-market/internal/models"
)

// Message is one post extracted from a mailman archive.
type Message struct {
	Subject string
	From    string
	Date    time.Time
	Body    string
	Links   []string
}

var (
	// Mailman separates messages with "From <addr> at <host>  <date>" lines.
	messageSep = regexp.MustCompile(`(?m)^From \S+ at \S+ {1,2}\w{3} \w{3} .*$`)
	urlPattern = regexp.MustCompile(`https?://[^\s<>"\)]+`)
	// Archives obfuscate addresses as "user at example.com".
	obfuscated = regexp.MustCompile(`^\s*(\S+) at (\S+)\s*(?:\(.*\))?\s*$`)
	subjectTag = regexp.MustCompile(`^\[[^\]]*\]\s*`)
)

const mailmanDateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// ParseArchive splits a mailman text archive into its messages.
func ParseArchive(raw string) []Message {
	bounds := messageSep.FindAllStringIndex(raw, -1)
	messages := []Message{}

	for i, bound := range bounds {
		end := len(raw)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		if msg, ok := parseMessage(raw[bound[0]:end]); ok {
			messages = append(messages, msg)
		}
	}

	return messages
}

func parseMessage(block string) (Message, bool) {
	lines := strings.Split(block, "\n")
	var msg Message
	bodyStart := 0

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "From: "):
			msg.From = parseAddress(strings.TrimPrefix(line, "From: "))
		case strings.HasPrefix(line, "Date: "):
			if t, err := time.Parse(mailmanDateLayout, strings.TrimSpace(strings.TrimPrefix(line, "Date: "))); err == nil {
				msg.Date = t.UTC()
			}
		case strings.HasPrefix(line, "Subject: "):
			msg.Subject = cleanSubject(strings.TrimPrefix(line, "Subject: "))
		case strings.TrimSpace(line) == "" && msg.Subject != "":
			bodyStart = i + 1
		}
		if bodyStart > 0 {
			break
		}
	}

	if msg.Subject == "" || bodyStart == 0 || bodyStart >= len(lines) {
		return Message{}, false
	}

	msg.Body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	msg.Links = urlPattern.FindAllString(msg.Body, -1)

	return msg, true
}

// ToItem converts a parsed post into an importable listing.
func (m Message) ToItem(mailingList string) model.Item {
	createdAt := m.Date
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return model.Item{
		Name:          m.Subject,
		Description:   m.Body,
		Email:         m.From,
		MailingList:   mailingList,
		PhotoURLs:     photoLinks(m.Links),
		OtherURLs:     nonPhotoLinks(m.Links),
		CanSelfPickup: true,
		Tags:          []string{mailingList},
		CreatedAt:     createdAt,
	}
}

func parseAddress(s string) string {
	if m := obfuscated.FindStringSubmatch(s); m != nil {
		return m[1] + "@" + m[2]
	}
	return strings.TrimSpace(s)
}

func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := subjectTag.ReplaceAllString(s, "")
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "Re:"))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func photoLinks(links []string) []string {
	photos := []string{}
	for _, link := range links {
		lower := strings.ToLower(link)
		if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") || strings.HasSuffix(lower, ".png") {
			photos = append(photos, link)
		}
	}
	return photos
}

func nonPhotoLinks(links []string) []string {
	others := []string{}
	for _, link := range links {
		lower := strings.ToLower(link)
		if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") && !strings.HasSuffix(lower, ".png") {
			others = append(others, link)
		}
	}
	return others
}
