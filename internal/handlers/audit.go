package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

// QueryAuditLog serves the audit trail. Filters arrive as query params:
// entity_type, actor_id, project_id, from, to (RFC 3339), limit, offset.
func QueryAuditLog(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	filter := audit.Filter{
		EntityType: ctx.Query("entity_type"),
	}

	parsers := []struct {
		param  string
		target *uint
	}{
		{"actor_id", &filter.ActorID},
		{"project_id", &filter.ProjectID},
	}
	for _, p := range parsers {
		if raw := ctx.Query(p.param); raw != "" {
			value, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + p.param})
				return
			}
			*p.target = uint(value)
		}
	}

	if raw := ctx.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from timestamp"})
			return
		}
		filter.From = from
	}
	if raw := ctx.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to timestamp"})
			return
		}
		filter.To = to
	}

	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = limit
	}
	if raw := ctx.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return
		}
		filter.Offset = offset
	}

	entries, err := st.QueryAudit(ctx.Request.Context(), userID, filter)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.AuditEntryResponse, 0, len(entries))

	for _, entry := range entries {
		response = append(response, audit.EntryResponse(entry))
	}

	ctx.JSON(http.StatusOK, response)
}
