package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/ayman-93/supabase-task-app/internal/dataservice"
	"github.com/ayman-93/supabase-task-app/internal/engine"
	apierrors "github.com/ayman-93/supabase-task-app/internal/errors"
	"github.com/ayman-93/supabase-task-app/internal/middleware"
	"github.com/ayman-93/supabase-task-app/internal/utils"
)

const heartbeatInterval = 30 * time.Second

// LiveHandler streams live task views over Server-Sent Events. Each
// connection gets its own synchronization engine over the shared data
// service; the engine converges the view through change notifications and
// the handler pushes a snapshot whenever the engine reports a change.
type LiveHandler struct {
	data *dataservice.Client
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(data *dataservice.Client) *LiveHandler {
	return &LiveHandler{
		data: data,
	}
}

// Stream serves GET /api/tasks/live. View parameters match ListTasks; the
// engine is torn down when the client disconnects.
func (h *LiveHandler) Stream(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	view := utils.GetViewState(c)

	// Coalescing wakeup: bursts of changes collapse into one snapshot push.
	notify := make(chan struct{}, 1)
	eng := engine.New(h.data, userID, view, engine.WithOnChange(func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	}))
	defer eng.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	// Each sync frame carries the id of the change notification that
	// produced it, so reconnecting clients can tell frames apart.
	push := func() {
		snapshot := eng.Snapshot()
		c.Render(-1, sse.Event{
			Id:    snapshot.LastChangeID,
			Event: "sync",
			Data:  snapshot,
		})
		c.Writer.Flush()
	}

	// Initial load; on failure the snapshot carries the error message and
	// the stream stays open for notifications to correct the view.
	_ = eng.Refetch()
	push()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-notify:
			push()
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}
