package scan

import "strings"

// destructiveKeywords are searched case-insensitively through the content of
// script-like files whose extension rule requests a content check. The list
// covers destructive and administrative verbs characteristic of scripted
// attacks; matching is whole-content, not line-oriented.
var destructiveKeywords = []string{
	"rm -rf",
	"del /f",
	"del /s",
	"format c:",
	"rmdir /s",
	"shutdown",
	"reg add",
	"reg delete",
	"regedit",
	"taskkill",
	"net user",
	"netsh",
	"schtasks",
	"chmod 777",
	"sudo ",
	"curl ",
	"wget ",
	"invoke-expression",
	"invoke-webrequest",
	"downloadstring",
	"base64 -d",
	"certutil -decode",
}

// keywordHits returns the destructive keywords present in content, in
// declaration order, each reported once.
func keywordHits(content string) []string {
	lower := strings.ToLower(content)
	var hits []string
	for _, kw := range destructiveKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, strings.TrimSpace(kw))
		}
	}
	return hits
}
