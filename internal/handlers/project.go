package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	TeamIDs     []uint `json:"team_ids" binding:"required"`
	WebhookURL  string `json:"webhook_url"`
}

type UpdateProjectRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	WebhookURL     *string `json:"webhook_url"`
	NotifyOverdue  *bool   `json:"notify_overdue"`
	NotifyActivity *bool   `json:"notify_activity"`
}

func projectResponse(project models.Project) types.ProjectResponse {
	teamIDs := make([]uint, 0, len(project.Teams))
	for _, team := range project.Teams {
		teamIDs = append(teamIDs, team.ID)
	}

	return types.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatorID:   project.CreatorID,
		TeamIDs:     teamIDs,
	}
}

func CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := st.CreateProject(ctx.Request.Context(), userID, store.CreateProjectInput{
		Name:        body.Name,
		Description: body.Description,
		TeamIDs:     body.TeamIDs,
		WebhookURL:  body.WebhookURL,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(*project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := st.ListProjects(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	project, err := st.GetProject(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(*project))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := st.UpdateProject(ctx.Request.Context(), userID, projectID, store.UpdateProjectInput{
		Name:           body.Name,
		Description:    body.Description,
		WebhookURL:     body.WebhookURL,
		NotifyOverdue:  body.NotifyOverdue,
		NotifyActivity: body.NotifyActivity,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "project_updated")
	ctx.JSON(http.StatusOK, projectResponse(*project))
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	if err := st.DeleteProject(ctx.Request.Context(), userID, projectID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func AttachProjectTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	if err := st.AttachTeam(ctx.Request.Context(), userID, projectID, teamID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusCreated)
}

func DetachProjectTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	if err := st.DetachTeam(ctx.Request.Context(), userID, projectID, teamID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type DashboardResponse struct {
	Project         types.ProjectResponse      `json:"project"`
	OpenTasks       int64                      `json:"open_tasks"`
	UnassignedTasks int64                      `json:"unassigned_tasks"`
	OverdueTasks    int64                      `json:"overdue_tasks"`
	RecentTasks     []types.TaskResponse       `json:"recent_tasks"`
	RecentActivity  []types.AuditEntryResponse `json:"recent_activity"`
}

func GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, ok := paramID(ctx, "project_id")
	if !ok {
		return
	}

	dash, err := st.ProjectDashboard(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := DashboardResponse{
		Project:         projectResponse(dash.Project),
		OpenTasks:       dash.OpenTasks,
		UnassignedTasks: dash.UnassignedTasks,
		OverdueTasks:    dash.OverdueTasks,
		RecentTasks:     make([]types.TaskResponse, 0, len(dash.RecentTasks)),
		RecentActivity:  make([]types.AuditEntryResponse, 0, len(dash.RecentActivity)),
	}

	for _, task := range dash.RecentTasks {
		response.RecentTasks = append(response.RecentTasks, taskResponse(task))
	}
	for _, entry := range dash.RecentActivity {
		response.RecentActivity = append(response.RecentActivity, audit.EntryResponse(entry))
	}

	ctx.JSON(http.StatusOK, response)
}
