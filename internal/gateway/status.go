package gateway

import (
	"time"

	"inferd/pkg/types"
)

// Status builds a detailed status response for GET /status.
func (g *Gateway) Status() types.StatusResponse {
	g.mu.RLock()
	defer g.mu.RUnlock()
	resp := types.StatusResponse{
		State:          string(g.state),
		Admitted:       len(g.pending),
		QueueLen:       len(g.queue),
		MaxQueueDepth:  g.maxQueueDepth,
		MaxBatchSize:   g.maxBatchSize,
		BatchesTotal:   g.batchesTotal.Load(),
		RequestsTotal:  g.requestsTotal.Load(),
		LastError:      g.lastErr,
		ServerTimeUnix: time.Now().Unix(),
	}
	if !g.startTime.IsZero() {
		resp.UptimeSeconds = int64(time.Since(g.startTime).Seconds())
	}
	return resp
}
