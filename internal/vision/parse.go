package vision

import "strings"

// ParseResponse splits a model response into the labeled fields the prompt
// asks for. Responses that ignore the format entirely land in Description,
// since the description is stored verbatim anyway.
func ParseResponse(raw string) *Analysis {
	a := &Analysis{RawResponse: raw}

	var extra []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case matchLabel(line, "location:") != "" && a.Location == "":
			a.Location = matchLabel(line, "location:")
		case matchLabel(line, "description:") != "" && a.Description == "":
			a.Description = matchLabel(line, "description:")
		case matchLabel(line, "date:") != "" && a.EstimatedDate == "":
			a.EstimatedDate = matchLabel(line, "date:")
		default:
			extra = append(extra, line)
		}
	}

	if a.Description == "" && len(extra) > 0 {
		a.Description = strings.Join(extra, " ")
	}
	return a
}

func matchLabel(line, label string) string {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return ""
	}
	return strings.TrimSpace(line[len(label):])
}
