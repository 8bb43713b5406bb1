package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chepyr/task-dashboard/internal/models"
)

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, Title: "Buy milk", Description: "and the weekly report paper", Priority: models.PriorityLow},
		{ID: 2, Title: "File report", Description: "Q3 numbers", Priority: models.PriorityHigh},
		{ID: 3, Title: "Call plumber", Description: "kitchen", Priority: models.PriorityMedium},
		{ID: 4, Title: "REPORT review", Description: "with team", Priority: models.PriorityHigh, Completed: true},
		{ID: 5, Title: "Water plants", Description: "", Priority: models.PriorityLow},
	}
}

func ids(tasks []models.Task) []int64 {
	out := []int64{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name   string
		filter models.PriorityFilter
		search string
		opts   []Option
		want   []int64
	}{
		{name: "all, no search", filter: models.FilterAll, want: []int64{1, 2, 3, 4, 5}},
		{name: "empty filter means all", filter: "", want: []int64{1, 2, 3, 4, 5}},
		{name: "high only", filter: models.FilterHigh, want: []int64{2, 4}},
		{name: "medium only", filter: models.FilterMedium, want: []int64{3}},
		{name: "search title case-insensitive", filter: models.FilterAll, search: "report", want: []int64{2, 4}},
		{name: "search upper-case needle", filter: models.FilterAll, search: "RePoRt", want: []int64{2, 4}},
		{name: "search with descriptions", filter: models.FilterAll, search: "report", opts: []Option{WithDescriptionSearch(true)}, want: []int64{1, 2, 4}},
		{name: "filter and search compose", filter: models.FilterLow, search: "report", opts: []Option{WithDescriptionSearch(true)}, want: []int64{1}},
		{name: "no match", filter: models.FilterMedium, search: "milk", want: []int64{}},
		{name: "whitespace is literal", filter: models.FilterAll, search: " ", want: []int64{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(sampleTasks(), tt.filter, tt.search, tt.opts...)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestVisible_ConcreteScenario(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, Title: "Buy milk", Priority: models.PriorityLow},
		{ID: 2, Title: "File report", Priority: models.PriorityHigh},
	}
	got := Visible(tasks, models.FilterHigh, "")
	assert.Equal(t, []models.Task{tasks[1]}, got)
}

func TestVisible_IsPure(t *testing.T) {
	tasks := sampleTasks()
	snapshot := sampleTasks()

	first := Visible(tasks, models.FilterHigh, "rep")
	second := Visible(tasks, models.FilterHigh, "rep")

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, tasks, "input must not be modified")

	first[0].Title = "changed"
	assert.Equal(t, snapshot, tasks, "output must not alias the input")
}

func TestVisible_KeepsDuplicates(t *testing.T) {
	task := models.Task{ID: 7, Title: "same", Priority: models.PriorityLow}
	got := Visible([]models.Task{task, task}, models.FilterAll, "")
	assert.Len(t, got, 2)
}

func TestCriteria_Apply(t *testing.T) {
	c := Criteria{Priority: models.FilterHigh, Search: "q3", SearchDescriptions: true}
	assert.Equal(t, []int64{2}, ids(c.Apply(sampleTasks())))

	c.SearchDescriptions = false
	assert.Empty(t, c.Apply(sampleTasks()))
}
