package job

// SelectSimilar picks up to limit candidates that share target's employment
// type, skipping target itself. Candidates keep their store order, which is
// the only ranking applied.
func SelectSimilar(target Job, candidates []Job, limit int) []Job {
	if limit <= 0 {
		return []Job{}
	}
	similar := make([]Job, 0, limit)
	for _, c := range candidates {
		if len(similar) >= limit {
			break
		}
		if c.ID == target.ID || c.EmploymentType != target.EmploymentType {
			continue
		}
		similar = append(similar, c)
	}
	return similar
}
