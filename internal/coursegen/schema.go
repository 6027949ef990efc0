package coursegen

import "google.golang.org/genai"

func stringSchema(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

// CourseSchema constrains the model's course outline output.
var CourseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"courseTitle":       stringSchema("The title of the personalized course."),
		"courseDescription": stringSchema("A brief description of the course."),
		"modules": {
			Type:        genai.TypeArray,
			Description: "Course content structured into modules. Each module should have between 2 to 4 lessons.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"moduleTitle":       stringSchema("Title of the module."),
					"moduleDescription": stringSchema("Brief description of what will be covered in the module."),
					"lessons": {
						Type:        genai.TypeArray,
						Description: "Lessons within the module. Each lesson should have between 2 to 5 topics.",
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"lessonTitle": stringSchema("Title of the lesson."),
								"topics": {
									Type:        genai.TypeArray,
									Description: "Concise topic names covered in this lesson.",
									Items:       &genai.Schema{Type: genai.TypeString},
								},
							},
							Required:         []string{"lessonTitle", "topics"},
							PropertyOrdering: []string{"lessonTitle", "topics"},
						},
					},
				},
				Required:         []string{"moduleTitle", "moduleDescription", "lessons"},
				PropertyOrdering: []string{"moduleTitle", "moduleDescription", "lessons"},
			},
		},
	},
	Required:         []string{"courseTitle", "courseDescription", "modules"},
	PropertyOrdering: []string{"courseTitle", "courseDescription", "modules"},
}

// LearningPathSchema constrains the adaptive learning path output.
var LearningPathSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"learningPath": stringSchema("A personalized learning path with a list of courses."),
	},
	Required: []string{"learningPath"},
}

// GuidanceSchema constrains the guidance agent output.
var GuidanceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"guidance": stringSchema("The personalized guidance and strategic support provided by the AI agent."),
	},
	Required: []string{"guidance"},
}
