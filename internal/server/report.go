package server

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/emigr8/clipforge/internal/compose"
)

func reportJSON(r *compose.Report) gin.H {
	results := make([]gin.H, 0, len(r.Results))
	for _, res := range r.Results {
		item := gin.H{
			"clip":     filepath.Base(res.Clip),
			"output":   filepath.Base(res.Output),
			"detected": res.Detected,
			"captions": res.Subtitled,
		}
		if res.Err != nil {
			item["error"] = res.Err.Error()
		}
		results = append(results, item)
	}

	return gin.H{
		"run_id":    r.RunID.String(),
		"succeeded": r.Succeeded(),
		"failed":    r.Failed(),
		"results":   results,
	}
}
