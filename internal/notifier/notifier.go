package notifier

import (
	"context"
	"log"

	"github.com/eventops/taskflow/internal/models"
)

// Notifier receives tasks that were just activated by a prerequisite
// completing. The engine never calls it directly; the API layer forwards the
// activation list after the status write has committed, so a failing notifier
// can never roll back a transition.
type Notifier interface {
	TasksActivated(ctx context.Context, tasks []models.Task) error
}

// LogNotifier writes activations to the process log. It stands in for the
// host's real outbound channel (email, push) in development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// TasksActivated logs each newly pending task with its owning pairing
func (n *LogNotifier) TasksActivated(_ context.Context, tasks []models.Task) error {
	for _, task := range tasks {
		log.Printf("task %d (%q) activated for event department %d", task.ID, task.Title, task.EventDepartmentID)
	}
	return nil
}
