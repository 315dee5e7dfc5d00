package health

import (
	"fmt"
	"sort"
)

// restartHints maps each local runtime to how an operator brings it
// back.
var restartHints = map[string]string{
	"ollama":   `run "ollama serve"`,
	"lmstudio": "start the local server from the LM Studio Developer tab",
	"vllm":     `run "vllm serve <model>"`,
}

// recommendations derives operator suggestions from the record set:
// system-wide escalations first, then per-provider hints in name
// order.
func recommendations(records map[string]ProviderHealthRecord) []Recommendation {
	if len(records) == 0 {
		return nil
	}

	healthy := 0
	names := make([]string, 0, len(records))
	for name, record := range records {
		names = append(names, name)
		if record.Status == StatusHealthy {
			healthy++
		}
	}
	sort.Strings(names)

	var recs []Recommendation

	switch healthy {
	case 0:
		recs = append(recs, Recommendation{
			Level:   LevelError,
			Message: "no healthy providers: chat requests will fail until one recovers",
		})
	case 1:
		recs = append(recs, Recommendation{
			Level:   LevelInfo,
			Message: "only one healthy provider: enable another for redundancy",
		})
	}

	for _, name := range names {
		record := records[name]
		switch record.Status {
		case StatusOffline:
			hint, local := restartHints[name]
			if !local {
				hint = "check the API key and network connectivity"
			}
			recs = append(recs, Recommendation{
				Level:    LevelWarning,
				Provider: name,
				Message:  fmt.Sprintf("%s is offline: %s", name, hint),
			})
		case StatusCritical, StatusDegraded:
			recs = append(recs, Recommendation{
				Level:    LevelWarning,
				Provider: name,
				Message: fmt.Sprintf("%s is %s (response %dms, error rate %.0f%%): consider switching providers",
					name, record.Status, record.ResponseTime, record.Metadata.ErrorRate*100),
			})
		}
	}

	return recs
}
