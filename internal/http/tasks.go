package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/tasks"
)

// TaskQueue is the part of the task client the admin endpoints use.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController lets admins inspect and trigger maintenance tasks.
type TasksController struct {
	queue         TaskQueue
	retentionDays int
}

func NewTasksController(queue TaskQueue, retentionDays int) *TasksController {
	return &TasksController{queue: queue, retentionDays: retentionDays}
}

// GetTaskStatus handles GET /admin/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		_ = c.Error(apperrors.Technical(err, "task status"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunAuditCleanup handles POST /admin/tasks/audit-cleanup
// It enqueues the same purge the nightly schedule does, attributed to the admin.
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	task := tasks.PurgeAuditEventsTask{
		RetentionDays: tc.retentionDays,
		RequestedBy:   auth.GetPrincipalID(c),
	}
	ids, err := tc.queue.Add(task).Ctx(c.Request.Context()).Save()
	if err != nil {
		_ = c.Error(apperrors.Technical(err, "enqueue audit cleanup"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": ids[0],
		"type":    task.Config().Name,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
