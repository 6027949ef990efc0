package domain

// LaunchTask is one recommended action in a launch plan
type LaunchTask struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Order       int      `json:"order"`
}

// ValidSequence reports whether tasks is non-empty and ordered 1..n without gaps
func ValidSequence(tasks []LaunchTask) bool {
	if len(tasks) == 0 {
		return false
	}
	for i, t := range tasks {
		if t.Order != i+1 {
			return false
		}
	}
	return true
}
