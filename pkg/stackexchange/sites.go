package stackexchange

import (
	"fmt"
	"strings"
)

const DefaultSite = "stackoverflow"

// Site describes where a Stack Exchange site serves answers and new
// questions.
type Site struct {
	Name       string
	AnswerBase string
	AskURL     string
}

var knownSites = map[string]Site{
	"stackoverflow": {Name: "stackoverflow", AnswerBase: "http://stackoverflow.com/a", AskURL: "https://stackoverflow.com/questions/ask"},
	"serverfault":   {Name: "serverfault", AnswerBase: "https://serverfault.com/a", AskURL: "https://serverfault.com/questions/ask"},
	"superuser":     {Name: "superuser", AnswerBase: "https://superuser.com/a", AskURL: "https://superuser.com/questions/ask"},
	"askubuntu":     {Name: "askubuntu", AnswerBase: "https://askubuntu.com/a", AskURL: "https://askubuntu.com/questions/ask"},
}

// LookupSite returns the URLs for a site API name. Sites not listed above
// are assumed to live under stackexchange.com.
func LookupSite(name string) (Site, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Site{}, fmt.Errorf("site name is required")
	}
	if strings.ContainsAny(name, "/:?# ") {
		return Site{}, fmt.Errorf("invalid site name: %q", name)
	}
	if s, ok := knownSites[name]; ok {
		return s, nil
	}
	host := name + ".stackexchange.com"
	return Site{
		Name:       name,
		AnswerBase: "https://" + host + "/a",
		AskURL:     "https://" + host + "/questions/ask",
	}, nil
}
