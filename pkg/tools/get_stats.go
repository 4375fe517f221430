package tools

import "context"

func getStatsTool() *Tool {
	return &Tool{
		Name:        "get-stats",
		Description: "Returns file counts, vector index count, and storage size for this instance.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: executeGetStats,
	}
}

func executeGetStats(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	fileCount, err := deps.Store.Count()
	if err != nil {
		return nil, err
	}
	diskBytes, err := deps.Store.DiskUsageBytes()
	if err != nil {
		return nil, err
	}

	vectorCount := 0
	vectorAvailable := deps.Index != nil
	if vectorAvailable {
		n, err := deps.Index.Count(ctx)
		if err != nil {
			vectorAvailable = false
		} else {
			vectorCount = n
		}
	}

	return Result{
		"query":            map[string]interface{}{},
		"file_count":        fileCount,
		"vector_count":      vectorCount,
		"vector_available": vectorAvailable,
		"disk_usage_bytes":  diskBytes,
	}, nil
}
