package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeIDs []uint     `json:"assignee_ids"`
	Tags        []string   `json:"tags"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *int       `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	AssigneeIDs *[]uint    `json:"assignee_ids"`
	Tags        *[]string  `json:"tags"`
}

func taskResponse(task models.Task) types.TaskResponse {
	assigneeIDs := make([]uint, 0, len(task.Assignees))
	for _, user := range task.Assignees {
		assigneeIDs = append(assigneeIDs, user.ID)
	}

	tags := make([]string, 0, len(task.Tags))
	for _, tag := range task.Tags {
		tags = append(tags, tag.Name)
	}

	return types.TaskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatorID:   task.CreatorID,
		AssigneeIDs: assigneeIDs,
		Tags:        tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := st.CreateTask(ctx.Request.Context(), userID, store.CreateTaskInput{
		ProjectID:   projectID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
		AssigneeIDs: body.AssigneeIDs,
		TagNames:    body.Tags,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "task_created")
	ctx.JSON(http.StatusCreated, taskResponse(*task))
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	filter := store.TaskFilter{
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
	}

	if raw := ctx.Query("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		filter.Priority = priority
	}
	if raw := ctx.Query("assignee_id"); raw != "" {
		assigneeID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee_id"})
			return
		}
		filter.AssigneeID = uint(assigneeID)
	}
	if ctx.Query("overdue") == "true" {
		filter.Overdue = true
	}

	tasks, err := st.ListTasks(ctx.Request.Context(), userID, projectID, filter)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	taskID, ok := paramID(ctx, "task_id")
	if !ok {
		return
	}

	task, err := st.GetTask(ctx.Request.Context(), userID, projectID, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(*task))
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	taskID, ok := paramID(ctx, "task_id")
	if !ok {
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := st.UpdateTask(ctx.Request.Context(), userID, projectID, taskID, store.UpdateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
		ClearDue:    body.ClearDue,
		AssigneeIDs: body.AssigneeIDs,
		TagNames:    body.Tags,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "task_updated")
	ctx.JSON(http.StatusOK, taskResponse(*task))
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTaskStatus moves a task between open, in_progress and done
// without touching the rest of the record.
func UpdateTaskStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	taskID, ok := paramID(ctx, "task_id")
	if !ok {
		return
	}

	var body UpdateTaskStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := st.UpdateTask(ctx.Request.Context(), userID, projectID, taskID, store.UpdateTaskInput{
		Status: &body.Status,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "task_status_changed")
	ctx.JSON(http.StatusOK, taskResponse(*task))
}

type UpdateTaskAssigneesRequest struct {
	AssigneeIDs []uint `json:"assignee_ids"`
}

// UpdateTaskAssignees replaces the full assignee set. An empty list
// unassigns everyone.
func UpdateTaskAssignees(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	taskID, ok := paramID(ctx, "task_id")
	if !ok {
		return
	}

	var body UpdateTaskAssigneesRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assigneeIDs := body.AssigneeIDs
	if assigneeIDs == nil {
		assigneeIDs = []uint{}
	}

	task, err := st.UpdateTask(ctx.Request.Context(), userID, projectID, taskID, store.UpdateTaskInput{
		AssigneeIDs: &assigneeIDs,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "task_assigned")
	ctx.JSON(http.StatusOK, taskResponse(*task))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	taskID, ok := paramID(ctx, "task_id")
	if !ok {
		return
	}

	if err := st.DeleteTask(ctx.Request.Context(), userID, projectID, taskID); err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "task_deleted")
	ctx.Status(http.StatusNoContent)
}
