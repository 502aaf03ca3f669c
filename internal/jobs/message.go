package jobs

// IngestionMessage is the canonical decoded job envelope, constructed per
// dispatch call from an already-decoded queue payload.
type IngestionMessage struct {
	Dataset string
	Country string
	City    string
	Regions []string
	Options map[string]any
}

// MessageFromPayload reads the job envelope fields. The identifier comes from
// "dataset" when present and non-empty, falling back to "job_name" because
// some producers only populate the latter. Missing options default to an
// empty map.
func MessageFromPayload(payload map[string]any) IngestionMessage {
	dataset, _ := payload["dataset"].(string)
	if dataset == "" {
		dataset, _ = payload["job_name"].(string)
	}

	country, _ := payload["country"].(string)
	city, _ := payload["city"].(string)

	var regions []string
	if raw, ok := payload["regions"].([]any); ok {
		resolved := make([]string, 0, len(raw))
		for _, value := range raw {
			name, ok := value.(string)
			if !ok {
				resolved = nil
				break
			}
			resolved = append(resolved, name)
		}
		regions = resolved
	}

	options, _ := payload["options"].(map[string]any)
	if options == nil {
		options = map[string]any{}
	}

	return IngestionMessage{
		Dataset: dataset,
		Country: country,
		City:    city,
		Regions: regions,
		Options: options,
	}
}
