package router

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRouterRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zerolog.Nop())

	want := map[string]bool{
		"POST /api/auth/register":                                false,
		"PATCH /api/projects/:project_id/tasks/:task_id":         false,
		"PUT /api/projects/:project_id/tasks/:task_id/status":    false,
		"PUT /api/projects/:project_id/tasks/:task_id/assignees": false,
		"POST /api/projects/:project_id/tasks/:task_id/comments": false,
		"GET /api/projects/:project_id/dashboard":                false,
		"DELETE /api/projects/:project_id/teams/:team_id":        false,
		"PATCH /api/teams/:team_id/members/:user_id":             false,
		"GET /api/audit":          false,
		"GET /api/ws/:project_id": false,
	}

	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}

	for key, seen := range want {
		if !seen {
			t.Errorf("route not registered: %s", key)
		}
	}
}
