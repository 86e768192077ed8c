// Package insights turns a graded submission into study advice.
package insights

import "fmt"

// Priority ranks how urgently a suggestion should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// defaultTotalTime is used when an assignment carries no time budget, in minutes.
const defaultTotalTime = 60

// PlanDays is the length of a generated study plan.
const PlanDays = 7

// Suggestion is a single piece of advice with concrete follow-up actions.
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Actions     []string `json:"actions"`
}

// Motivation is a short encouraging message for a score band.
type Motivation struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

// PlanTask is one day of a study plan.
type PlanTask struct {
	Day      int    `json:"day"`
	Task     string `json:"task"`
	Duration string `json:"duration"`
}

// StudyPlan is a day-by-day revision schedule.
type StudyPlan struct {
	Duration string     `json:"duration"`
	Tasks    []PlanTask `json:"tasks"`
}

// Attempt is the performance data insights are derived from. TotalTimeTaken
// is in seconds, TotalTime is the allowed time in minutes.
type Attempt struct {
	CourseName     string
	Score          float64
	Accuracy       float64
	TotalTimeTaken int
	TotalTime      int
	TabSwitches    int
}

// Report bundles everything generated for one attempt.
type Report struct {
	Suggestions []Suggestion `json:"suggestions"`
	Motivation  Motivation   `json:"motivation"`
	StudyPlan   StudyPlan    `json:"study_plan"`
}

// Build produces the full report for attempt.
func Build(attempt Attempt) Report {
	return Report{
		Suggestions: Suggestions(attempt),
		Motivation:  MotivationFor(attempt.Score),
		StudyPlan:   PlanFor(attempt.Score),
	}
}

// Suggestions returns advice ordered by the rule that produced it: score band,
// pacing, focus, guessing, then the general tips and resources that are
// always included.
func Suggestions(attempt Attempt) []Suggestion {
	course := attempt.CourseName
	if course == "" {
		course = "this subject"
	}

	var out []Suggestion

	switch {
	case attempt.Score < 40:
		out = append(out,
			Suggestion{
				Title:       "Review Fundamentals",
				Description: fmt.Sprintf("A score of %.1f%% shows the basics of %s need more work. Go back over the core concepts and your teacher's notes.", attempt.Score, course),
				Priority:    PriorityHigh,
				Actions: []string{
					"Re-read course notes and materials",
					"Watch tutorial videos on the topic",
					"Create flashcards for key concepts",
					"Ask your teacher about the topics you found hardest",
				},
			},
			Suggestion{
				Title:       "Study Group",
				Description: "Study with classmates who did well on this quiz. Explaining ideas to each other helps them stick.",
				Priority:    PriorityHigh,
				Actions: []string{
					"Find 2-3 study partners",
					"Schedule regular study sessions",
					"Teach each other difficult concepts",
					"Share notes and resources",
				},
			},
		)
	case attempt.Score < 60:
		out = append(out, Suggestion{
			Title:       "Focus on Weak Areas",
			Description: fmt.Sprintf("You scored %.1f%%. Find the topics you missed and spend most of your study time there.", attempt.Score),
			Priority:    PriorityMedium,
			Actions: []string{
				"Review questions you got wrong",
				"Practice similar problems",
				"Plan study sessions around weak topics",
				"Use online resources for extra practice",
			},
		})
	case attempt.Score < 80:
		out = append(out, Suggestion{
			Title:       "Almost There",
			Description: fmt.Sprintf("Good work, you scored %.1f%%. A little more practice will close the gap.", attempt.Score),
			Priority:    PriorityLow,
			Actions: []string{
				"Review incorrect answers carefully",
				"Practice advanced problems",
				"Help others to reinforce your knowledge",
				"Take practice tests to improve speed and accuracy",
			},
		})
	}

	if attempt.TotalTimeTaken > 0 {
		minutes := attempt.TotalTimeTaken / 60
		budget := attempt.TotalTime
		if budget <= 0 {
			budget = defaultTotalTime
		}

		switch {
		case float64(minutes) < float64(budget)*0.3:
			out = append(out, Suggestion{
				Title:       "Take Your Time",
				Description: fmt.Sprintf("You finished in %d minutes. Read each question carefully instead of rushing.", minutes),
				Priority:    PriorityMedium,
				Actions: []string{
					"Read each question twice before answering",
					"Double-check answers before submitting",
					"Use the full time available",
				},
			})
		case float64(minutes) > float64(budget)*0.9:
			out = append(out, Suggestion{
				Title:       "Improve Speed",
				Description: fmt.Sprintf("You used %d of %d minutes. Timed practice will help you keep accuracy at a faster pace.", minutes, budget),
				Priority:    PriorityMedium,
				Actions: []string{
					"Practice timed quizzes regularly",
					"Skip difficult questions and return later",
					"Learn to spot key information quickly",
				},
			})
		}
	}

	if attempt.TabSwitches > 0 {
		out = append(out, Suggestion{
			Title:       "Stay Focused",
			Description: fmt.Sprintf("You left the quiz tab %d times. Interruptions cost concentration and marks.", attempt.TabSwitches),
			Priority:    PriorityHigh,
			Actions: []string{
				"Find a quiet study environment",
				"Turn off notifications during quizzes",
				"Close unnecessary browser tabs",
			},
		})
	}

	if attempt.Accuracy < attempt.Score-10 {
		out = append(out, Suggestion{
			Title:       "Avoid Guessing",
			Description: "Your accuracy trails your score, which points to lucky guesses. Aim to understand each answer.",
			Priority:    PriorityMedium,
			Actions: []string{
				"Study the material before attempting quizzes",
				"Eliminate obviously wrong answers first",
				"Ask for help when concepts are unclear",
			},
		})
	}

	out = append(out,
		Suggestion{
			Title:       "Study Tips",
			Description: "General habits that improve results over time.",
			Priority:    PriorityLow,
			Actions: []string{
				"Keep a consistent study schedule",
				"Use active recall and spaced repetition",
				"Take regular breaks during study sessions",
				"Sleep well before exams",
				"Practice past papers and sample questions",
			},
		},
		Suggestion{
			Title:       "Recommended Resources",
			Description: "Places to find extra help.",
			Priority:    PriorityLow,
			Actions: []string{
				"Free online courses such as Khan Academy",
				"Educational video channels",
				"Course textbooks and reference material",
				"Online practice quiz platforms",
				"Teacher office hours",
			},
		},
	)

	return out
}

// MotivationFor picks an encouraging message for score.
func MotivationFor(score float64) Motivation {
	switch {
	case score >= 90:
		return Motivation{Message: "Outstanding! You're mastering this subject.", Tone: "green"}
	case score >= 80:
		return Motivation{Message: "Great work! Keep it up.", Tone: "blue"}
	case score >= 70:
		return Motivation{Message: "Good job. A bit more practice will get you to excellence.", Tone: "teal"}
	case score >= 60:
		return Motivation{Message: "You're making progress. Work on your weak areas and you'll improve quickly.", Tone: "yellow"}
	case score >= 40:
		return Motivation{Message: "Don't give up. Review the material and try again.", Tone: "orange"}
	default:
		return Motivation{Message: "Treat this as a learning opportunity. Review the basics and ask for help.", Tone: "red"}
	}
}

// PlanFor returns a week-long plan sized to score.
func PlanFor(score float64) StudyPlan {
	var tasks [PlanDays][2]string

	switch {
	case score < 60:
		tasks = [PlanDays][2]string{
			{"Review all course notes and list difficult topics", "1-2 hours"},
			{"Watch tutorial videos on weak areas", "1 hour"},
			{"Create flashcards for key concepts", "1 hour"},
			{"Practice problems from the textbook", "1-2 hours"},
			{"Join a study group or ask your teacher for help", "1 hour"},
			{"Take a practice quiz and review mistakes", "1 hour"},
			{"Final review, then rest", "30 minutes"},
		}
	case score < 80:
		tasks = [PlanDays][2]string{
			{"Review incorrect answers from the quiz", "30 minutes"},
			{"Practice similar problems", "1 hour"},
			{"Study advanced concepts", "1 hour"},
			{"Take a practice test", "1 hour"},
			{"Review and clear up doubts", "30 minutes"},
			{"Quick revision of all topics", "1 hour"},
			{"Light review and relax", "30 minutes"},
		}
	default:
		tasks = [PlanDays][2]string{
			{"Review any mistakes made", "20 minutes"},
			{"Explore advanced topics", "30 minutes"},
			{"Help others understand concepts", "30 minutes"},
			{"Try challenging practice problems", "30 minutes"},
			{"Quick review of key concepts", "20 minutes"},
			{"Light revision", "20 minutes"},
			{"Stay confident and relaxed", "10 minutes"},
		}
	}

	plan := StudyPlan{Duration: fmt.Sprintf("%d days", PlanDays), Tasks: make([]PlanTask, 0, PlanDays)}
	for i, task := range tasks {
		plan.Tasks = append(plan.Tasks, PlanTask{Day: i + 1, Task: task[0], Duration: task[1]})
	}
	return plan
}
