package service

// Stage is a step of a single pair fetch.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageAcquiringProvider
	StageFetchingPairBatch
	StageFetchingTokenBatch
	StageNormalizing
	StageReady
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageValidating:
		return "validating"
	case StageAcquiringProvider:
		return "acquiring_provider"
	case StageFetchingPairBatch:
		return "fetching_pair_batch"
	case StageFetchingTokenBatch:
		return "fetching_token_batch"
	case StageNormalizing:
		return "normalizing"
	case StageReady:
		return "ready"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StageObserver is notified of every stage a fetch enters. It is called from
// the goroutine running the fetch, so concurrent fetches call it concurrently.
type StageObserver func(pairAddress string, stage Stage)
