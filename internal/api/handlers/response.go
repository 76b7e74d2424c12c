package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// ITaskClient is the slice of asynq.Client the handlers use, extracted so
// tests can enqueue into a mock.
type ITaskClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Every response is wrapped in the same envelope the dashboard expects:
// { success, message?, data? }.

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
