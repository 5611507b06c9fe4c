package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

func commentResponse(comment models.Comment) types.CommentResponse {
	return types.CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

func CreateComment(ctx *gin.Context) {
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

	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := st.CreateComment(ctx.Request.Context(), userID, projectID, taskID, body.Body)

	if err != nil {
		respondError(ctx, err)
		return
	}

	announceActivity(ctx.Request.Context(), projectID, "comment_added")
	ctx.JSON(http.StatusCreated, commentResponse(*comment))
}

func ListComments(ctx *gin.Context) {
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

	comments, err := st.ListComments(ctx.Request.Context(), userID, projectID, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, response)
}
