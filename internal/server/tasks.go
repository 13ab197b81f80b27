package server

import (
	"net/http"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// taskID returns the :id path parameter, or a rejection when it does not
// have the 24-hex shape. Malformed ids never reach the repository.
func taskID(ctx *gin.Context) (string, result, bool) {
	id := ctx.Param("id")
	if !models.IsValidID(id) {
		return "", invalid(msgInvalidTaskID), false
	}
	return id, result{}, true
}

func taskLookupFailure(err error) result {
	if errors.Is(err, errors.ErrTaskNotFound) {
		return notFound(msgTaskNotFound)
	}
	return internalError(err)
}

func (api *TaskAPI) createTask(ctx *gin.Context) result {
	var req models.TaskRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.ParsePriority(req.Priority),
		CreatedAt:   api.now().UTC(),
	}
	if err := api.tasks.CreateTask(ctx.Request.Context(), &task); err != nil {
		return internalError(err)
	}

	return success(http.StatusOK, gin.H{
		"message": "Task added successfully",
		"task":    task,
	})
}

func (api *TaskAPI) getTasks(ctx *gin.Context) result {
	tasks, err := api.tasks.GetTasks(ctx.Request.Context())
	if err != nil {
		return internalError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return success(http.StatusOK, gin.H{"tasks": tasks})
}

func (api *TaskAPI) getTaskByID(ctx *gin.Context) result {
	id, r, ok := taskID(ctx)
	if !ok {
		return r
	}

	task, err := api.tasks.GetTaskByID(ctx.Request.Context(), id)
	if err != nil {
		return taskLookupFailure(err)
	}
	return success(http.StatusOK, gin.H{"task": task})
}

// updateTask replaces the whole record; the body must carry every field.
func (api *TaskAPI) updateTask(ctx *gin.Context) result {
	id, r, ok := taskID(ctx)
	if !ok {
		return r
	}

	var req models.TaskRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.ParsePriority(req.Priority),
	}
	if err := api.tasks.UpdateTask(ctx.Request.Context(), id, &task); err != nil {
		return taskLookupFailure(err)
	}

	return success(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) result {
	id, r, ok := taskID(ctx)
	if !ok {
		return r
	}

	if err := api.tasks.DeleteTask(ctx.Request.Context(), id); err != nil {
		return taskLookupFailure(err)
	}
	return success(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
