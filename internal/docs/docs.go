// Package docs embeds the markdown topics shown by `gridedit docs` and the
// grid's help overlay.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

func Topics() []string {
	entries, err := fs.ReadDir(contentFS, "content")
	if err != nil {
		return []string{}
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		if topic, ok := strings.CutSuffix(e.Name(), ".md"); ok && topic != "" && !e.IsDir() {
			topics = append(topics, topic)
		}
	}
	slices.Sort(topics)
	return topics
}

// Get returns the markdown of a topic. Case and a trailing ".md" are
// ignored; anything that looks like a path is not a topic.
func Get(topic string) (string, bool) {
	topic = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(topic)), ".md")
	if topic == "" || strings.ContainsAny(topic, `/\.`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}
