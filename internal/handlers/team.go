package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type TeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type MemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func teamResponse(team models.Team) types.TeamResponse {
	resp := types.TeamResponse{
		ID:   team.ID,
		Name: team.Name,
	}
	for _, m := range team.Memberships {
		resp.Members = append(resp.Members, types.MemberResponse{
			UserID: m.UserID,
			Name:   m.User.Name,
			Email:  m.User.Email,
			Role:   m.Role,
		})
	}
	return resp
}

func CreateTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	team, err := st.CreateTeam(ctx.Request.Context(), userID, body.Name)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, teamResponse(*team))
}

func ListTeams(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teams, err := st.ListTeams(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TeamResponse, 0, len(teams))

	for _, team := range teams {
		response = append(response, teamResponse(team))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	team, err := st.GetTeam(ctx.Request.Context(), userID, teamID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, teamResponse(*team))
}

func RenameTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	var body TeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	team, err := st.RenameTeam(ctx.Request.Context(), userID, teamID, body.Name)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, teamResponse(*team))
}

func DeleteTeam(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	if err := st.DeleteTeam(ctx.Request.Context(), userID, teamID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func AddTeamMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	var body MemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err = st.AddMember(ctx.Request.Context(), userID, teamID, store.MemberInput{
		UserID: body.UserID,
		Role:   body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusCreated)
}

func UpdateTeamMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	memberID, ok := paramID(ctx, "user_id")
	if !ok {
		return
	}

	var body struct {
		Role string `json:"role" binding:"required"`
	}

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err = st.UpdateMemberRole(ctx.Request.Context(), userID, teamID, store.MemberInput{
		UserID: memberID,
		Role:   body.Role,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusOK)
}

func RemoveTeamMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	teamID, ok := paramID(ctx, "team_id")
	if !ok {
		return
	}

	memberID, ok := paramID(ctx, "user_id")
	if !ok {
		return
	}

	if err := st.RemoveMember(ctx.Request.Context(), userID, teamID, memberID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
