package sections

import "strings"

// IsolateHeaders puts every header line into its own paragraph by inserting
// blank lines around it where neighbouring content exists.
func IsolateHeaders(text string, classifier *Classifier) string {
	if classifier == nil {
		classifier = Default()
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines)+8)

	for i, line := range lines {
		if !classifier.IsHeader(line) {
			out = append(out, line)
			continue
		}
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}
