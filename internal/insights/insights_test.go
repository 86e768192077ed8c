package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func titles(suggestions []Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Title)
	}
	return out
}

func TestSuggestionsLowScore(t *testing.T) {
	got := titles(Suggestions(Attempt{Score: 20, Accuracy: 20}))
	require.Equal(t, []string{"Review Fundamentals", "Study Group", "Study Tips", "Recommended Resources"}, got)
}

func TestSuggestionsScoreBands(t *testing.T) {
	require.Contains(t, titles(Suggestions(Attempt{Score: 50, Accuracy: 50})), "Focus on Weak Areas")
	require.Contains(t, titles(Suggestions(Attempt{Score: 70, Accuracy: 70})), "Almost There")

	high := titles(Suggestions(Attempt{Score: 95, Accuracy: 95}))
	require.Equal(t, []string{"Study Tips", "Recommended Resources"}, high)
}

func TestSuggestionsPacing(t *testing.T) {
	rushed := titles(Suggestions(Attempt{Score: 90, Accuracy: 90, TotalTimeTaken: 5 * 60, TotalTime: 60}))
	require.Contains(t, rushed, "Take Your Time")

	slow := titles(Suggestions(Attempt{Score: 90, Accuracy: 90, TotalTimeTaken: 58 * 60, TotalTime: 60}))
	require.Contains(t, slow, "Improve Speed")

	steady := titles(Suggestions(Attempt{Score: 90, Accuracy: 90, TotalTimeTaken: 30 * 60}))
	require.NotContains(t, steady, "Take Your Time")
	require.NotContains(t, steady, "Improve Speed")
}

func TestSuggestionsTabSwitches(t *testing.T) {
	got := Suggestions(Attempt{Score: 90, Accuracy: 90, TabSwitches: 3})
	require.Equal(t, "Stay Focused", got[0].Title)
	require.Equal(t, PriorityHigh, got[0].Priority)
	require.Contains(t, got[0].Description, "3 times")
}

func TestSuggestionsNeverFlagGuessingWhenAccuracyEqualsScore(t *testing.T) {
	require.NotContains(t, titles(Suggestions(Attempt{Score: 55, Accuracy: 55})), "Avoid Guessing")
	require.Contains(t, titles(Suggestions(Attempt{Score: 55, Accuracy: 30})), "Avoid Guessing")
}

func TestMotivationBands(t *testing.T) {
	require.Equal(t, "green", MotivationFor(90).Tone)
	require.Equal(t, "blue", MotivationFor(85).Tone)
	require.Equal(t, "teal", MotivationFor(70).Tone)
	require.Equal(t, "yellow", MotivationFor(60).Tone)
	require.Equal(t, "orange", MotivationFor(40).Tone)
	require.Equal(t, "red", MotivationFor(0).Tone)
}

func TestPlanForHasSevenDays(t *testing.T) {
	for _, score := range []float64{10, 70, 100} {
		plan := PlanFor(score)
		require.Equal(t, "7 days", plan.Duration)
		require.Len(t, plan.Tasks, PlanDays)
		require.Equal(t, 1, plan.Tasks[0].Day)
		require.Equal(t, 7, plan.Tasks[6].Day)
	}
	require.NotEqual(t, PlanFor(10).Tasks[0].Task, PlanFor(100).Tasks[0].Task)
}
