package domain

import "strings"

// LearningPathRequest describes a user's progress and the catalog to pick from
type LearningPathRequest struct {
	UserProgress     string `json:"userProgress"`
	UserInterests    string `json:"userInterests"`
	UserNeeds        string `json:"userNeeds"`
	AvailableCourses string `json:"availableCourses"`
}

// MissingField returns the JSON name of the first blank field, or "" if complete
func (r LearningPathRequest) MissingField() string {
	switch {
	case strings.TrimSpace(r.UserProgress) == "":
		return "userProgress"
	case strings.TrimSpace(r.UserInterests) == "":
		return "userInterests"
	case strings.TrimSpace(r.UserNeeds) == "":
		return "userNeeds"
	case strings.TrimSpace(r.AvailableCourses) == "":
		return "availableCourses"
	}
	return ""
}

// LearningPath is a personalized list of courses
type LearningPath struct {
	LearningPath string `json:"learningPath"`
}

// Empty reports whether no path was produced
func (p LearningPath) Empty() bool {
	return strings.TrimSpace(p.LearningPath) == ""
}

// GuidanceRequest is a question for the CÓDIGO guidance agent
type GuidanceRequest struct {
	UserInput    string `json:"userInput"`
	UserProgress string `json:"userProgress,omitempty"`
}

// MissingField returns "userInput" when the question is blank; progress is optional
func (r GuidanceRequest) MissingField() string {
	if strings.TrimSpace(r.UserInput) == "" {
		return "userInput"
	}
	return ""
}

// Guidance is the agent's answer
type Guidance struct {
	Guidance string `json:"guidance"`
}

// Empty reports whether no guidance was produced
func (g Guidance) Empty() bool {
	return strings.TrimSpace(g.Guidance) == ""
}
