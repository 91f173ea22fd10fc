// Package titlematch asks a language model which contact title best fits a
// priority title list.
package titlematch

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// SystemPrompt frames the model as a sales director choosing whom to contact.
const SystemPrompt = `You are a Sales Director helping the user decide who is the best contact to
reach out to at a particular company. The user gives you a list of titles
ordered from the best person to reach out to downwards, and a second list
with the titles of the contacts we have at the company. Choose the contact
title that most closely matches the highest priority title in the priority
list, using your judgment as a Sales Director. Always answer with a title
copied exactly from the contact list. Here are some examples:

=== Example One ===
priorityTitles = ["Chief Technology Officer", "CTO", "Vice President of Technology"]
contactTitles = ["Product Head", "Head of Design", "VP Technology"]

respond with: bestTitle = "VP Technology"
===================

=== Example Two ===
priorityTitles = ["Founder", "Co-Founder", "CTO", "Chief Technology Officer"]
contactTitles = ["COO", "Tech Lead", "Founder and Chief Architect"]

respond with: bestTitle = "Founder and Chief Architect"
===================

=== Example Three ===
priorityTitles = ["Head of Product", "Director of Product", "CTO", "Chief Technology Officer"]
contactTitles = ["CTO", "Vice President of Product", "Sales Engineer"]

respond with: bestTitle = "Vice President of Product"
===================
`

// jsonInstruction is appended for backends without a response schema.
const jsonInstruction = `
Respond with only a JSON object of the form {"bestTitle": "<title>"}. Use an
empty string when none of the contact titles is a reasonable fit.`

// UserPrompt lists the priority titles and the candidate titles.
func UserPrompt(candidates, priorities []string) string {
	return "priorityTitles = " + jsonList(priorities) + "\ncontactTitles=" + jsonList(candidates)
}

type bestTitleResponse struct {
	BestTitle *string `json:"bestTitle"`
}

// parseBestTitle reads {"bestTitle": ...} out of a model reply. An empty
// reply, or one with no JSON object at all, is a "no choice" like an empty
// title. A JSON object without the key is malformed.
func parseBestTitle(text string) (string, error) {
	if !strings.Contains(text, "{") {
		return "", nil
	}
	var resp bestTitleResponse
	if err := json.Unmarshal([]byte(cleanJSON(text)), &resp); err != nil {
		return "", eris.Wrap(err, "titlematch: parse reply")
	}
	if resp.BestTitle == nil {
		return "", eris.New("titlematch: reply has no bestTitle")
	}
	return strings.TrimSpace(*resp.BestTitle), nil
}

// cleanJSON extracts a JSON object from text that may carry markdown code
// fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items) //nolint:errcheck
	return string(b)
}
