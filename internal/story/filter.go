package story

import "strings"

// Filter returns the stories whose title contains term, ignoring case.
// The result keeps the input order; an empty term returns stories as is.
func Filter(stories []Story, term string) []Story {
	if term == "" {
		return stories
	}
	needle := strings.ToLower(term)
	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			out = append(out, s)
		}
	}
	return out
}
